package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/auth"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (h *Handler) token(u *model.User) (*structpb.Struct, error) {
	tok, err := auth.MakeToken(u.ID, u.Role, h.secret, h.ttl)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return encode(view.Auth{Token: tok, User: view.NewUser(u)})
}

func (h *Handler) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req service.RegisterInput
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	u, err := h.svc.Register(ctx, req)
	if err != nil {
		return fail(err)
	}
	return h.token(u)
}

func (h *Handler) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	u, err := h.svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return fail(err)
	}
	return h.token(u)
}

func (h *Handler) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	u, err := h.svc.Profile(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewUser(u))
}

// profileRequest lists the editable profile fields. Email, role and
// password are not among them.
type profileRequest struct {
	FirstName      *string  `json:"firstName"`
	LastName       *string  `json:"lastName"`
	GraduationYear *int     `json:"graduationYear"`
	Department     *string  `json:"department"`
	Course         *string  `json:"course"`
	CurrentCompany *string  `json:"currentCompany"`
	Designation    *string  `json:"designation"`
	City           *string  `json:"city"`
	Country        *string  `json:"country"`
	LinkedIn       *string  `json:"linkedin"`
	Bio            *string  `json:"bio"`
	Skills         []string `json:"skills"`
}

func (r profileRequest) update() model.ProfileUpdate {
	return model.ProfileUpdate(r)
}

func (h *Handler) UpdateProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req profileRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	u, err := h.svc.UpdateProfile(ctx, a, req.update())
	if err != nil {
		return fail(err)
	}
	return encode(view.NewUser(u))
}

func (h *Handler) ListAlumni(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var q service.AlumniQuery
	if err := decode(in, &q); err != nil {
		return nil, err
	}
	p, err := h.svc.Alumni(ctx, q)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewPage(p, view.NewUser))
}

func (h *Handler) SearchUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Query string `json:"q"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	users, err := h.svc.Search(ctx, req.Query)
	if err != nil {
		return fail(err)
	}
	return encode(map[string]any{"items": view.List(users, view.NewUser)})
}

func (h *Handler) Connect(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := h.svc.Connect(ctx, a, req.UserID); err != nil {
		return fail(err)
	}
	return message("connection added")
}
