// Package mongo is the MongoDB-backed Store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

type Store struct {
	client      *mongo.Client
	users       *mongo.Collection
	mentorships *mongo.Collection
	events      *mongo.Collection
	jobs        *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, selects database db and ensures indexes.
func Open(ctx context.Context, uri, db string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	d := client.Database(db)
	s := &Store{
		client:      client,
		users:       d.Collection("users"),
		mentorships: d.Collection("mentorships"),
		events:      d.Collection("events"),
		jobs:        d.Collection("jobs"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_verified", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	_, err = s.mentorships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// one pending or accepted mentorship per pair
			Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "mentee_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mentorship indexes: %w", err)
	}
	_, err = s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "is_approved", Value: 1}, {Key: "status", Value: 1}, {Key: "start_date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("event indexes: %w", err)
	}
	_, err = s.jobs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("job indexes: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ci matches s anywhere in a field, ignoring case.
func ci(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// findOpts applies sort and page; a zero limit returns everything.
func findOpts(sort bson.D, p store.Page) *options.FindOptions {
	o := options.Find().SetSort(sort)
	if p.Limit > 0 {
		o.SetSkip(int64(p.Offset())).SetLimit(int64(p.Limit))
	}
	return o
}

// findAll decodes every document the query returns into D and converts it.
func findAll[D any, T any](ctx context.Context, c *mongo.Collection, filter any, opts *options.FindOptions, conv func(*D) *T) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for i := range docs {
		out = append(out, *conv(&docs[i]))
	}
	return out, nil
}

type count struct {
	c      *mongo.Collection
	filter bson.M
	dst    *int
}

func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{}
	counts := []count{
		{s.users, bson.M{}, &st.TotalUsers},
		{s.users, bson.M{"role": model.RoleAlumni}, &st.TotalAlumni},
		{s.users, bson.M{"role": model.RoleStudent}, &st.TotalStudents},
		{s.users, bson.M{"role": model.RoleAlumni, "is_verified": true}, &st.VerifiedAlumni},
		{s.jobs, bson.M{}, &st.TotalJobs},
		{s.jobs, bson.M{"status": model.JobActive}, &st.ActiveJobs},
		{s.events, bson.M{}, &st.TotalEvents},
		{s.events, bson.M{"status": model.EventUpcoming}, &st.UpcomingEvents},
		{s.users, bson.M{"is_mentor": true}, &st.TotalMentors},
		{s.mentorships, bson.M{"status": model.MentorshipAccepted}, &st.ActiveMentorships},
	}
	for _, q := range counts {
		n, err := q.c.CountDocuments(ctx, q.filter)
		if err != nil {
			return nil, err
		}
		*q.dst = int(n)
	}
	return st, nil
}
