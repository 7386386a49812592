package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.events.InsertOne(ctx, toEventDoc(e))
	return mapErr(err)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var d eventDoc
	if err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *model.Event) error {
	d := toEventDoc(e)
	set := bson.M{
		"title":                 d.Title,
		"description":           d.Description,
		"type":                  d.Type,
		"mode":                  d.Mode,
		"start_date":            d.StartDate,
		"end_date":              d.EndDate,
		"address":               d.Address,
		"city":                  d.City,
		"virtual_link":          d.VirtualLink,
		"target_audience":       d.TargetAudience,
		"max_attendees":         d.MaxAttendees,
		"registration_deadline": d.RegistrationDeadline,
		"status":                d.Status,
		"is_approved":           d.IsApproved,
	}
	return matched(s.events.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": set}))
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.events.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter) ([]model.Event, int, error) {
	filter := bson.M{}
	if f.Approved != nil {
		filter["is_approved"] = *f.Approved
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Mode != "" {
		filter["mode"] = f.Mode
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	total, err := s.events.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	events, err := findAll(ctx, s.events, filter,
		findOpts(bson.D{{Key: "start_date", Value: 1}}, f.Page), (*eventDoc).model)
	return events, int(total), err
}

func (s *Store) SetEventApproved(ctx context.Context, id string, approved bool) (*model.Event, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d eventDoc
	err := s.events.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": approved}}, opts).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	return d.model(), nil
}

func (s *Store) FindAttendee(ctx context.Context, eventID, userID string) (*model.Attendee, error) {
	var d struct {
		Attendees []attendeeDoc `bson:"attendees"`
	}
	opts := options.FindOne().SetProjection(bson.M{"attendees.$": 1})
	err := s.events.FindOne(ctx, bson.M{"_id": eventID, "attendees.user_id": userID}, opts).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	if len(d.Attendees) == 0 {
		return nil, store.ErrNotFound
	}
	a := model.Attendee(d.Attendees[0])
	return &a, nil
}

// UpsertAttendee updates the entry in place when present, otherwise pushes a
// new one. The $ne guard keeps a concurrent push from duplicating the user.
func (s *Store) UpsertAttendee(ctx context.Context, eventID string, a model.Attendee) error {
	res, err := s.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "attendees.user_id": a.UserID},
		bson.M{"$set": bson.M{"attendees.$.status": a.Status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	err = matched(s.events.UpdateOne(ctx,
		bson.M{"_id": eventID, "attendees.user_id": bson.M{"$ne": a.UserID}},
		bson.M{"$push": bson.M{"attendees": attendeeDoc(a)}},
	))
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	// either the event is gone or the user was pushed meanwhile
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return err
	}
	return nil
}

func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	return matched(s.events.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"attendees": bson.M{"user_id": userID}}},
	))
}
