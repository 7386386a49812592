package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (h *Handler) GetStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	st, err := h.svc.Stats(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewStats(st))
}

func (h *Handler) ListUsers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var q service.UserQuery
	if err := decode(in, &q); err != nil {
		return nil, err
	}
	p, err := h.svc.ListUsers(ctx, a, q)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewPage(p, view.NewUser))
}

func (h *Handler) VerifyUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	u, err := h.svc.VerifyUser(ctx, a, req.ID)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewUser(u))
}

func (h *Handler) SuspendUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		idRequest
		Suspend bool `json:"suspend"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	u, err := h.svc.SuspendUser(ctx, a, req.ID, req.Suspend)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewUser(u))
}

func (h *Handler) PendingJobs(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := h.svc.PendingJobs(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(map[string]any{"items": view.List(jobs, view.NewJob)})
}

type approveRequest struct {
	idRequest
	Approve bool `json:"approve"`
}

func (h *Handler) ApproveJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req approveRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	j, err := h.svc.SetJobApproval(ctx, a, req.ID, req.Approve)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewJob(j))
}

func (h *Handler) PendingEvents(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	events, err := h.svc.PendingEvents(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(map[string]any{"items": view.List(events, view.NewEvent)})
}

func (h *Handler) ApproveEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req approveRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	e, err := h.svc.SetEventApproval(ctx, a, req.ID, req.Approve)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewEvent(e))
}
