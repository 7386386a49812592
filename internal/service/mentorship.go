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

type MentorProfileInput struct {
	Expertise    []string `json:"expertise" validate:"dive,required"`
	Experience   int      `json:"experience" validate:"gte=0"`
	Availability string   `json:"availability"`
	MaxMentees   *int     `json:"maxMentees" validate:"omitempty,gte=0"`
}

// RegisterMentor marks the actor as a mentor with the given details.
func (s *Service) RegisterMentor(ctx context.Context, actor access.Actor, in MentorProfileInput) error {
	if err := access.Check(actor, access.BecomeMentor, access.Resource{}); err != nil {
		return err
	}
	if err := check(in); err != nil {
		return err
	}
	p := model.MentorProfile{
		Expertise:    in.Expertise,
		Experience:   in.Experience,
		Availability: in.Availability,
		MaxMentees:   in.MaxMentees,
	}
	if err := s.store.SetMentorProfile(ctx, actor.UserID, p); err != nil {
		return storeErr(err, "user")
	}
	return nil
}

func (s *Service) ListMentors(ctx context.Context, expertise string, p store.Page) (Paged[model.User], error) {
	p = page(p, 10)
	users, total, err := s.store.ListMentors(ctx, store.MentorFilter{Expertise: expertise, Page: p})
	if err != nil {
		return Paged[model.User]{}, apperr.Unavailable(err)
	}
	return paged(users, total, p), nil
}

type MentorshipRequest struct {
	MentorID      string     `json:"mentorId" validate:"required"`
	Domain        string     `json:"domain" validate:"required"`
	Goals         string     `json:"goals" validate:"required"`
	PreferredMode model.Mode `json:"preferredMode" validate:"omitempty,oneof=online in-person both"`
	Message       string     `json:"requestMessage" validate:"max=2000"`
}

// RequestMentorship creates a pending mentorship from the actor to a mentor.
//
// Capacity is measured against accepted mentorships only; pending requests
// do not consume a slot and a full mentor is only detected here, not when
// the mentor later accepts.
func (s *Service) RequestMentorship(ctx context.Context, actor access.Actor, req MentorshipRequest) (*model.Mentorship, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if req.MentorID == actor.UserID {
		return nil, apperr.Validation("cannot request mentorship from yourself")
	}
	if req.PreferredMode == "" {
		req.PreferredMode = model.ModeOnline
	}

	mentor, err := s.store.UserByID(ctx, req.MentorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unavailable(err)
	}
	if mentor == nil || !mentor.IsMentor {
		return nil, apperr.NotFound("mentor not found or not available")
	}

	unlock, err := s.lock(ctx, "mentor", mentor.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.store.FindActiveBetween(ctx, mentor.ID, actor.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unavailable(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("you already have an active request with this mentor")
	}

	accepted, err := s.store.CountAccepted(ctx, mentor.ID)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	var limit *int
	if mentor.Mentor != nil {
		limit = mentor.Mentor.MaxMentees
	}
	if !capacity.CanAdmit(accepted, limit) {
		return nil, apperr.CapacityExceeded("mentor has reached maximum capacity")
	}

	m := &model.Mentorship{
		ID:             s.newID(),
		MentorID:       mentor.ID,
		MenteeID:       actor.UserID,
		Status:         model.MentorshipPending,
		Domain:         req.Domain,
		Goals:          req.Goals,
		PreferredMode:  req.PreferredMode,
		RequestMessage: req.Message,
		Sessions:       []model.Session{},
		CreatedAt:      s.now(),
	}
	err = s.store.CreateMentorship(ctx, m)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrDuplicate):
		// another process won the race; the database index caught it
		return nil, apperr.Conflict("you already have an active request with this mentor")
	default:
		return nil, apperr.Unavailable(err)
	}
	return m, nil
}

// DecideMentorship lets the mentor accept or reject a pending request.
// Accepting stamps the start date. Capacity is not re-checked.
func (s *Service) DecideMentorship(ctx context.Context, actor access.Actor, id string, decision model.MentorshipStatus) (*model.Mentorship, error) {
	if decision != model.MentorshipAccepted && decision != model.MentorshipRejected {
		return nil, apperr.Validation("status must be accepted or rejected")
	}

	unlock, err := s.lock(ctx, "mentorship", id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.store.GetMentorship(ctx, id)
	if err != nil {
		return nil, storeErr(err, "mentorship request")
	}
	if err := access.Check(actor, access.DecideMentorship, access.Resource{MentorID: m.MentorID, MenteeID: m.MenteeID}); err != nil {
		return nil, err
	}
	if m.Status != model.MentorshipPending {
		return nil, apperr.Conflict("mentorship request is already " + string(m.Status))
	}

	var start *time.Time
	if decision == model.MentorshipAccepted {
		now := s.now()
		start = &now
		m.StartDate = start
	}
	if err := s.store.SetMentorshipStatus(ctx, id, decision, start); err != nil {
		return nil, storeErr(err, "mentorship request")
	}
	m.Status = decision
	return m, nil
}

type SessionInput struct {
	Date     time.Time `json:"date" validate:"required"`
	Duration int       `json:"duration" validate:"gte=0"`
	Mode     string    `json:"mode"`
	Notes    string    `json:"notes"`
}

// ScheduleSession appends a session. Overlapping sessions are allowed.
func (s *Service) ScheduleSession(ctx context.Context, actor access.Actor, mentorshipID string, in SessionInput) (*model.Mentorship, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, "mentorship", mentorshipID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.store.GetMentorship(ctx, mentorshipID)
	if err != nil {
		return nil, storeErr(err, "mentorship")
	}
	if err := access.Check(actor, access.ScheduleSession, access.Resource{MentorID: m.MentorID, MenteeID: m.MenteeID}); err != nil {
		return nil, err
	}

	sess := model.Session{
		ID:       s.newID(),
		Date:     in.Date,
		Duration: in.Duration,
		Mode:     in.Mode,
		Notes:    in.Notes,
	}
	if err := s.store.AppendSession(ctx, mentorshipID, sess); err != nil {
		return nil, storeErr(err, "mentorship")
	}
	m.Sessions = append(m.Sessions, sess)
	return m, nil
}

type FeedbackInput struct {
	SessionID string `json:"sessionId" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// SubmitFeedback sets the mentee's feedback on a session, replacing any
// earlier feedback.
func (s *Service) SubmitFeedback(ctx context.Context, actor access.Actor, mentorshipID string, in FeedbackInput) error {
	if err := check(in); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, "mentorship", mentorshipID)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.store.GetMentorship(ctx, mentorshipID)
	if err != nil {
		return storeErr(err, "mentorship")
	}
	if err := access.Check(actor, access.SubmitFeedback, access.Resource{MentorID: m.MentorID, MenteeID: m.MenteeID}); err != nil {
		return err
	}

	fb := model.Feedback{Rating: in.Rating, Comment: in.Comment}
	if err := s.store.SetSessionFeedback(ctx, mentorshipID, in.SessionID, fb); err != nil {
		return storeErr(err, "session")
	}
	return nil
}

// PendingRequests lists requests awaiting the actor's decision as mentor.
func (s *Service) PendingRequests(ctx context.Context, actor access.Actor) ([]model.Mentorship, error) {
	out, err := s.store.ListMentorships(ctx, store.MentorshipFilter{
		MentorID: actor.UserID,
		Statuses: []model.MentorshipStatus{model.MentorshipPending},
	})
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return out, nil
}

// MyMentorships lists accepted mentorships on either side.
func (s *Service) MyMentorships(ctx context.Context, actor access.Actor) ([]model.Mentorship, error) {
	out, err := s.store.ListMentorships(ctx, store.MentorshipFilter{
		ParticipantID: actor.UserID,
		Statuses:      []model.MentorshipStatus{model.MentorshipAccepted},
	})
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return out, nil
}
