// Package store defines the persistence contract of the portal. Backends
// live in subpackages: postgres, mongo and memstore.
package store

import (
	"context"
	"errors"
	"time"

	"alumni-portal/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Page is 1-based; a zero Limit means no limit.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type UserFilter struct {
	Role       model.Role
	Verified   *bool
	Department string
	Batch      int
	City       string // case-insensitive substring
	Company    string // case-insensitive substring
	// ByGraduation sorts by graduation year, newest first, instead of
	// creation time.
	ByGraduation bool
	Page
}

type MentorFilter struct {
	Expertise string
	Page
}

type MentorshipFilter struct {
	MentorID      string
	ParticipantID string // mentor or mentee
	Statuses      []model.MentorshipStatus
}

type EventFilter struct {
	Approved *bool
	Type     string
	Mode     string
	Status   model.EventStatus
	Page
}

type JobFilter struct {
	Status   model.JobStatus
	Type     string
	Location string // case-insensitive substring
	Company  string // case-insensitive substring
	Page
}

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error)
	SetMentorProfile(ctx context.Context, id string, p model.MentorProfile) error
	SetVerified(ctx context.Context, id string, verified bool) (*model.User, error)
	SetSuspended(ctx context.Context, id string, suspended bool) (*model.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
	AddConnection(ctx context.Context, userID, otherID string) error
	ListUsers(ctx context.Context, f UserFilter) ([]model.User, int, error)
	ListMentors(ctx context.Context, f MentorFilter) ([]model.User, int, error)
	SearchUsers(ctx context.Context, q string, limit int) ([]model.User, error)
}

type MentorshipStore interface {
	CreateMentorship(ctx context.Context, m *model.Mentorship) error
	GetMentorship(ctx context.Context, id string) (*model.Mentorship, error)
	// FindActiveBetween returns the pending or accepted mentorship of the
	// pair, or ErrNotFound.
	FindActiveBetween(ctx context.Context, mentorID, menteeID string) (*model.Mentorship, error)
	CountAccepted(ctx context.Context, mentorID string) (int, error)
	SetMentorshipStatus(ctx context.Context, id string, status model.MentorshipStatus, startDate *time.Time) error
	AppendSession(ctx context.Context, mentorshipID string, s model.Session) error
	SetSessionFeedback(ctx context.Context, mentorshipID, sessionID string, f model.Feedback) error
	ListMentorships(ctx context.Context, f MentorshipFilter) ([]model.Mentorship, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// UpdateEvent writes every field except organizer and attendees.
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, f EventFilter) ([]model.Event, int, error)
	SetEventApproved(ctx context.Context, id string, approved bool) (*model.Event, error)
	FindAttendee(ctx context.Context, eventID, userID string) (*model.Attendee, error)
	// UpsertAttendee replaces the entry of a.UserID if present, else appends.
	UpsertAttendee(ctx context.Context, eventID string, a model.Attendee) error
	// RemoveAttendee is a no-op when the user has no entry.
	RemoveAttendee(ctx context.Context, eventID, userID string) error
}

type JobStore interface {
	CreateJob(ctx context.Context, j *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// UpdateJob writes every field except poster, views and applications.
	UpdateJob(ctx context.Context, j *model.Job) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, f JobFilter) ([]model.Job, int, error)
	IncrementViews(ctx context.Context, id string) error
	SetJobStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)
	// AddApplication returns ErrDuplicate when the applicant already applied.
	AddApplication(ctx context.Context, jobID string, a model.Application) error
}

type Store interface {
	UserStore
	MentorshipStore
	EventStore
	JobStore
	Stats(ctx context.Context) (*model.Stats, error)
	Close() error
}
