package service

import (
	"context"
	"errors"
	"time"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/capacity"
	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

type EventInput struct {
	Title                string            `json:"title" validate:"required"`
	Description          string            `json:"description" validate:"required"`
	Type                 string            `json:"type" validate:"required,oneof=reunion webinar workshop networking meetup"`
	Mode                 string            `json:"mode" validate:"required,oneof=online offline hybrid"`
	StartDate            time.Time         `json:"startDate" validate:"required"`
	EndDate              time.Time         `json:"endDate" validate:"required,gtefield=StartDate"`
	Address              string            `json:"address"`
	City                 string            `json:"city"`
	VirtualLink          string            `json:"virtualLink" validate:"omitempty,url"`
	TargetAudience       string            `json:"targetAudience" validate:"omitempty,oneof=all alumni students specific-batch specific-department"`
	MaxAttendees         *int              `json:"maxAttendees" validate:"omitempty,gte=0"`
	RegistrationDeadline *time.Time        `json:"registrationDeadline"`
	Status               model.EventStatus `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

func (in EventInput) apply(e *model.Event) {
	e.Title = in.Title
	e.Description = in.Description
	e.Type = in.Type
	e.Mode = in.Mode
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	e.Address = in.Address
	e.City = in.City
	e.VirtualLink = in.VirtualLink
	e.TargetAudience = in.TargetAudience
	if e.TargetAudience == "" {
		e.TargetAudience = "all"
	}
	e.MaxAttendees = in.MaxAttendees
	e.RegistrationDeadline = in.RegistrationDeadline
	if in.Status != "" {
		e.Status = in.Status
	}
}

// CreateEvent records an event organised by the actor. Events from admins
// are approved immediately; others wait for moderation.
func (s *Service) CreateEvent(ctx context.Context, actor access.Actor, in EventInput) (*model.Event, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	e := &model.Event{
		ID:          s.newID(),
		OrganizerID: actor.UserID,
		Status:      model.EventUpcoming,
		IsApproved:  actor.IsAdmin(),
		Attendees:   []model.Attendee{},
		CreatedAt:   s.now(),
	}
	in.apply(e)
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, apperr.Unavailable(err)
	}
	return e, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr(err, "event")
	}
	return e, nil
}

type EventQuery struct {
	Type   string
	Mode   string
	Status model.EventStatus
	store.Page
}

// ListEvents returns approved events, upcoming ones unless a status is given.
func (s *Service) ListEvents(ctx context.Context, q EventQuery) (Paged[model.Event], error) {
	approved := true
	if q.Status == "" {
		q.Status = model.EventUpcoming
	}
	p := page(q.Page, 10)
	events, total, err := s.store.ListEvents(ctx, store.EventFilter{
		Approved: &approved,
		Type:     q.Type,
		Mode:     q.Mode,
		Status:   q.Status,
		Page:     p,
	})
	if err != nil {
		return Paged[model.Event]{}, apperr.Unavailable(err)
	}
	return paged(events, total, p), nil
}

// EventPatch carries the fields an update may change. Nil fields keep their
// stored value.
type EventPatch struct {
	Title                *string            `json:"title" validate:"omitnil,min=1"`
	Description          *string            `json:"description" validate:"omitnil,min=1"`
	Type                 *string            `json:"type" validate:"omitnil,oneof=reunion webinar workshop networking meetup"`
	Mode                 *string            `json:"mode" validate:"omitnil,oneof=online offline hybrid"`
	StartDate            *time.Time         `json:"startDate"`
	EndDate              *time.Time         `json:"endDate"`
	Address              *string            `json:"address"`
	City                 *string            `json:"city"`
	VirtualLink          *string            `json:"virtualLink" validate:"omitempty,url"`
	TargetAudience       *string            `json:"targetAudience" validate:"omitnil,oneof=all alumni students specific-batch specific-department"`
	MaxAttendees         *int               `json:"maxAttendees" validate:"omitnil,gte=0"`
	RegistrationDeadline *time.Time         `json:"registrationDeadline"`
	Status               *model.EventStatus `json:"status" validate:"omitnil,oneof=upcoming ongoing completed cancelled"`
}

func (p EventPatch) apply(e *model.Event) {
	set(&e.Title, p.Title)
	set(&e.Description, p.Description)
	set(&e.Type, p.Type)
	set(&e.Mode, p.Mode)
	set(&e.StartDate, p.StartDate)
	set(&e.EndDate, p.EndDate)
	set(&e.Address, p.Address)
	set(&e.City, p.City)
	set(&e.VirtualLink, p.VirtualLink)
	set(&e.TargetAudience, p.TargetAudience)
	set(&e.Status, p.Status)
	if p.MaxAttendees != nil {
		n := *p.MaxAttendees
		e.MaxAttendees = &n
	}
	if p.RegistrationDeadline != nil {
		d := *p.RegistrationDeadline
		e.RegistrationDeadline = &d
	}
}

// UpdateEvent applies the fields present in p. The organizer and the
// attendee list cannot change here.
func (s *Service) UpdateEvent(ctx context.Context, actor access.Actor, id string, p EventPatch) (*model.Event, error) {
	if err := check(p); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, "event", id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, storeErr(err, "event")
	}
	if err := access.Check(actor, access.ManageEvent, access.Resource{OwnerID: e.OrganizerID}); err != nil {
		return nil, err
	}
	p.apply(e)
	if e.EndDate.Before(e.StartDate) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}
	if err := s.store.UpdateEvent(ctx, e); err != nil {
		return nil, storeErr(err, "event")
	}
	return e, nil
}

func (s *Service) DeleteEvent(ctx context.Context, actor access.Actor, id string) error {
	unlock, err := s.lock(ctx, "event", id)
	if err != nil {
		return err
	}
	defer unlock()

	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return storeErr(err, "event")
	}
	if err := access.Check(actor, access.ManageEvent, access.Resource{OwnerID: e.OrganizerID}); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return storeErr(err, "event")
	}
	return nil
}

// Rsvp records the actor's attendance status.
//
// An existing entry is overwritten in place without consulting capacity, so
// a maybe can become going on a full event. Only a brand-new going entry is
// gated by maxAttendees.
func (s *Service) Rsvp(ctx context.Context, actor access.Actor, eventID string, st model.AttendeeStatus) error {
	switch st {
	case model.AttendeeGoing, model.AttendeeMaybe, model.AttendeeNotGoing:
	default:
		return apperr.Validation("status must be going, maybe or not-going")
	}

	unlock, err := s.lock(ctx, "event", eventID)
	if err != nil {
		return err
	}
	defer unlock()

	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return storeErr(err, "event")
	}

	existing, err := s.store.FindAttendee(ctx, eventID, actor.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Unavailable(err)
	}

	entry := model.Attendee{UserID: actor.UserID, Status: st, RegisteredAt: s.now()}
	if existing != nil {
		entry.RegisteredAt = existing.RegisteredAt
	} else if st == model.AttendeeGoing && !capacity.CanAdmit(e.GoingCount(), e.MaxAttendees) {
		return apperr.CapacityExceeded("event is full")
	}

	if err := s.store.UpsertAttendee(ctx, eventID, entry); err != nil {
		return storeErr(err, "event")
	}
	return nil
}

// CancelRsvp removes the actor's entry. Cancelling twice is not an error.
func (s *Service) CancelRsvp(ctx context.Context, actor access.Actor, eventID string) error {
	unlock, err := s.lock(ctx, "event", eventID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.RemoveAttendee(ctx, eventID, actor.UserID); err != nil {
		return storeErr(err, "event")
	}
	return nil
}

// SetEventApproval flips the approval flag. Admin only.
func (s *Service) SetEventApproval(ctx context.Context, actor access.Actor, id string, approve bool) (*model.Event, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, "event", id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err := s.store.SetEventApproved(ctx, id, approve)
	if err != nil {
		return nil, storeErr(err, "event")
	}
	return e, nil
}

func (s *Service) PendingEvents(ctx context.Context, actor access.Actor) ([]model.Event, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	approved := false
	events, _, err := s.store.ListEvents(ctx, store.EventFilter{Approved: &approved})
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return events, nil
}
