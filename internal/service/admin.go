package service

import (
	"context"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

func (s *Service) Stats(ctx context.Context, actor access.Actor) (*model.Stats, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return st, nil
}

type UserQuery struct {
	Role     model.Role
	Verified *bool
	store.Page
}

func (s *Service) ListUsers(ctx context.Context, actor access.Actor, q UserQuery) (Paged[model.User], error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return Paged[model.User]{}, err
	}
	p := page(q.Page, 20)
	users, total, err := s.store.ListUsers(ctx, store.UserFilter{Role: q.Role, Verified: q.Verified, Page: p})
	if err != nil {
		return Paged[model.User]{}, apperr.Unavailable(err)
	}
	return paged(users, total, p), nil
}

func (s *Service) VerifyUser(ctx context.Context, actor access.Actor, id string) (*model.User, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	u, err := s.store.SetVerified(ctx, id, true)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

// SuspendUser blocks or unblocks an account. Tokens already issued stop
// working on the next call because Actor re-reads the user.
func (s *Service) SuspendUser(ctx context.Context, actor access.Actor, id string, suspend bool) (*model.User, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	if id == actor.UserID && suspend {
		return nil, apperr.Validation("cannot suspend yourself")
	}
	u, err := s.store.SetSuspended(ctx, id, suspend)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}
