// Package service implements the portal workflows: mentorship requests and
// sessions, event RSVPs, job postings and the admin moderation around them.
// Every capacity-gated mutation runs under a per-target lock.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/keylock"
	"alumni-portal/internal/store"
)

var validate = validator.New()

type Service struct {
	store store.Store
	locks *keylock.Locker
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		locks: keylock.New(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lock serialises work on one target, e.g. lock(ctx, "event", id).
func (s *Service) lock(ctx context.Context, kind, id string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, kind+":"+id)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "request cancelled", err)
	}
	return unlock, nil
}

// Actor re-reads the caller on every operation so that suspensions and
// role changes apply to tokens already issued.
func (s *Service) Actor(ctx context.Context, userID string) (access.Actor, error) {
	u, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return access.Actor{}, apperr.New(apperr.CodeUnauthenticated, "unknown user")
	}
	if err != nil {
		return access.Actor{}, apperr.Unavailable(err)
	}
	if u.IsSuspended {
		return access.Actor{}, apperr.Forbidden("account suspended")
	}
	return access.Actor{UserID: u.ID, Role: u.Role}, nil
}

func storeErr(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(what + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Wrap(apperr.CodeConflict, what+" conflicts with an existing record", err)
	default:
		return apperr.Unavailable(err)
	}
}

// set overwrites *dst when src is present.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, "invalid request", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return apperr.Wrap(apperr.CodeValidation, strings.Join(msgs, "; "), err)
}

func page(p store.Page, def int) store.Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = def
	}
	return p
}

// Paged is one page of results plus the total match count.
type Paged[T any] struct {
	Items       []T
	Total       int
	CurrentPage int
	TotalPages  int
}

func paged[T any](items []T, total int, p store.Page) Paged[T] {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Paged[T]{Items: items, Total: total, CurrentPage: p.Page, TotalPages: pages}
}
