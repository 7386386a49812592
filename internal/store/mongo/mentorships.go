package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

var activeStatuses = bson.A{model.MentorshipPending, model.MentorshipAccepted}

func (s *Store) CreateMentorship(ctx context.Context, m *model.Mentorship) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.mentorships.InsertOne(ctx, toMentorshipDoc(m))
	return mapErr(err)
}

func (s *Store) findMentorship(ctx context.Context, filter bson.M) (*model.Mentorship, error) {
	var d mentorshipDoc
	if err := s.mentorships.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) GetMentorship(ctx context.Context, id string) (*model.Mentorship, error) {
	return s.findMentorship(ctx, bson.M{"_id": id})
}

func (s *Store) FindActiveBetween(ctx context.Context, mentorID, menteeID string) (*model.Mentorship, error) {
	return s.findMentorship(ctx, bson.M{
		"mentor_id": mentorID,
		"mentee_id": menteeID,
		"status":    bson.M{"$in": activeStatuses},
	})
}

func (s *Store) CountAccepted(ctx context.Context, mentorID string) (int, error) {
	n, err := s.mentorships.CountDocuments(ctx, bson.M{"mentor_id": mentorID, "status": model.MentorshipAccepted})
	return int(n), err
}

func (s *Store) SetMentorshipStatus(ctx context.Context, id string, status model.MentorshipStatus, startDate *time.Time) error {
	set := bson.M{"status": status, "active": status.Active()}
	if startDate != nil {
		set["start_date"] = *startDate
	}
	return matched(s.mentorships.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}))
}

func (s *Store) AppendSession(ctx context.Context, mentorshipID string, sess model.Session) error {
	sess.Feedback = nil
	return matched(s.mentorships.UpdateOne(ctx,
		bson.M{"_id": mentorshipID},
		bson.M{"$push": bson.M{"sessions": toSessionDoc(sess)}},
	))
}

func (s *Store) SetSessionFeedback(ctx context.Context, mentorshipID, sessionID string, f model.Feedback) error {
	return matched(s.mentorships.UpdateOne(ctx,
		bson.M{"_id": mentorshipID, "sessions.id": sessionID},
		bson.M{"$set": bson.M{"sessions.$.feedback": feedbackDoc{Rating: f.Rating, Comment: f.Comment}}},
	))
}

func (s *Store) ListMentorships(ctx context.Context, f store.MentorshipFilter) ([]model.Mentorship, error) {
	filter := bson.M{}
	if f.MentorID != "" {
		filter["mentor_id"] = f.MentorID
	}
	if f.ParticipantID != "" {
		filter["$or"] = bson.A{
			bson.M{"mentor_id": f.ParticipantID},
			bson.M{"mentee_id": f.ParticipantID},
		}
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	return findAll(ctx, s.mentorships, filter,
		findOpts(bson.D{{Key: "created_at", Value: 1}}, store.Page{}), (*mentorshipDoc).model)
}
