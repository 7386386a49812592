package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (h *Handler) ListEvents(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var q service.EventQuery
	if err := decode(in, &q); err != nil {
		return nil, err
	}
	p, err := h.svc.ListEvents(ctx, q)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewPage(p, view.NewEvent))
}

func (h *Handler) GetEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	e, err := h.svc.GetEvent(ctx, req.ID)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewEvent(e))
}

func (h *Handler) CreateEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req service.EventInput
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	e, err := h.svc.CreateEvent(ctx, a, req)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewEvent(e))
}

func (h *Handler) UpdateEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		idRequest
		service.EventPatch
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	e, err := h.svc.UpdateEvent(ctx, a, req.ID, req.EventPatch)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewEvent(e))
}

func (h *Handler) DeleteEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
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
	if err := h.svc.DeleteEvent(ctx, a, req.ID); err != nil {
		return fail(err)
	}
	return message("event deleted")
}

func (h *Handler) Rsvp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		idRequest
		Status model.AttendeeStatus `json:"status"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	if err := h.svc.Rsvp(ctx, a, req.ID, req.Status); err != nil {
		return fail(err)
	}
	return message("rsvp updated")
}

func (h *Handler) CancelRsvp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
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
	if err := h.svc.CancelRsvp(ctx, a, req.ID); err != nil {
		return fail(err)
	}
	return message("rsvp cancelled")
}
