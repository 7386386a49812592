package service

import (
	"context"
	"errors"
	"strings"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

type RegisterInput struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	FirstName      string     `json:"firstName" validate:"required"`
	LastName       string     `json:"lastName" validate:"required"`
	Role           model.Role `json:"role" validate:"required,oneof=alumni student"`
	Department     string     `json:"department" validate:"required"`
	Course         string     `json:"course" validate:"required"`
	GraduationYear int        `json:"graduationYear" validate:"required_if=Role alumni,gte=0,lte=2200"`
}

// Register creates an alumni or student account. Admins are not
// self-registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "hash password", err)
	}
	u := &model.User{
		ID:             s.newID(),
		Email:          in.Email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Role:           in.Role,
		Department:     in.Department,
		Course:         in.Course,
		GraduationYear: in.GraduationYear,
	}
	err = s.store.CreateUser(ctx, u)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("user already exists")
	default:
		return nil, apperr.Unavailable(err)
	}
}

// Authenticate checks credentials and records the login time. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}
	u, err := s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid credentials")
	}
	if u.IsSuspended {
		return nil, apperr.Forbidden("account suspended")
	}
	now := s.now()
	if err := s.store.TouchLogin(ctx, u.ID, now); err != nil {
		return nil, apperr.Unavailable(err)
	}
	u.LastLogin = &now
	return u, nil
}

func (s *Service) Profile(ctx context.Context, actor access.Actor) (*model.User, error) {
	u, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

// UpdateProfile changes the actor's own profile. Email, password and role
// are not part of model.ProfileUpdate and cannot change here.
func (s *Service) UpdateProfile(ctx context.Context, actor access.Actor, upd model.ProfileUpdate) (*model.User, error) {
	if upd.Bio != nil && len(*upd.Bio) > 500 {
		return nil, apperr.Validation("bio must be at most 500 characters")
	}
	if upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "" {
		return nil, apperr.Validation("firstName cannot be empty")
	}
	if upd.LastName != nil && strings.TrimSpace(*upd.LastName) == "" {
		return nil, apperr.Validation("lastName cannot be empty")
	}
	u, err := s.store.UpdateProfile(ctx, actor.UserID, upd)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

type AlumniQuery struct {
	Department string
	Batch      int
	City       string
	Company    string
	store.Page
}

// Alumni lists verified alumni, most recent graduates first.
func (s *Service) Alumni(ctx context.Context, q AlumniQuery) (Paged[model.User], error) {
	verified := true
	p := page(q.Page, 20)
	users, total, err := s.store.ListUsers(ctx, store.UserFilter{
		Role:         model.RoleAlumni,
		Verified:     &verified,
		Department:   q.Department,
		Batch:        q.Batch,
		City:         q.City,
		Company:      q.Company,
		ByGraduation: true,
		Page:         p,
	})
	if err != nil {
		return Paged[model.User]{}, apperr.Unavailable(err)
	}
	return paged(users, total, p), nil
}

func (s *Service) Search(ctx context.Context, q string) ([]model.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("search query required")
	}
	users, err := s.store.SearchUsers(ctx, q, 20)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return users, nil
}

// Connect links the actor and target both ways.
func (s *Service) Connect(ctx context.Context, actor access.Actor, targetID string) error {
	if targetID == actor.UserID {
		return apperr.Validation("cannot connect with yourself")
	}
	if err := s.store.AddConnection(ctx, actor.UserID, targetID); err != nil {
		return storeErr(err, "user")
	}
	return nil
}
