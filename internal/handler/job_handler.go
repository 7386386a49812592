package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (h *Handler) ListJobs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var q service.JobQuery
	if err := decode(in, &q); err != nil {
		return nil, err
	}
	p, err := h.svc.ListJobs(ctx, q)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewPage(p, view.NewJob))
}

func (h *Handler) GetJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	j, err := h.svc.GetJob(ctx, req.ID)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewJob(j))
}

func (h *Handler) CreateJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req service.JobInput
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	j, err := h.svc.CreateJob(ctx, a, req)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewJob(j))
}

func (h *Handler) UpdateJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		idRequest
		service.JobPatch
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	j, err := h.svc.UpdateJob(ctx, a, req.ID, req.JobPatch)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewJob(j))
}

func (h *Handler) DeleteJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
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
	if err := h.svc.DeleteJob(ctx, a, req.ID); err != nil {
		return fail(err)
	}
	return message("job deleted")
}

func (h *Handler) ApplyJob(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
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
	if err := h.svc.ApplyJob(ctx, a, req.ID); err != nil {
		return fail(err)
	}
	return message("application submitted")
}
