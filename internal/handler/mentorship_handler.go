package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/store"
	"alumni-portal/internal/view"
)

func (h *Handler) ListMentors(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Expertise string `json:"expertise"`
		store.Page
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	p, err := h.svc.ListMentors(ctx, req.Expertise, req.Page)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewPage(p, view.NewUser))
}

func (h *Handler) RegisterMentor(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req service.MentorProfileInput
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := h.svc.RegisterMentor(ctx, a, req); err != nil {
		return fail(err)
	}
	return message("registered as mentor")
}

func (h *Handler) RequestMentorship(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req service.MentorshipRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	m, err := h.svc.RequestMentorship(ctx, a, req)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewMentorship(m))
}

func (h *Handler) PendingRequests(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := h.svc.PendingRequests(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(map[string]any{"items": view.List(ms, view.NewMentorship)})
}

func (h *Handler) MyMentorships(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := h.svc.MyMentorships(ctx, a)
	if err != nil {
		return fail(err)
	}
	return encode(map[string]any{"items": view.List(ms, view.NewMentorship)})
}

func (h *Handler) DecideMentorship(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		idRequest
		Status model.MentorshipStatus `json:"status"`
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.check(); err != nil {
		return nil, err
	}
	m, err := h.svc.DecideMentorship(ctx, a, req.ID, req.Status)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewMentorship(m))
}

func (h *Handler) ScheduleSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		MentorshipID string `json:"mentorshipId"`
		service.SessionInput
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	m, err := h.svc.ScheduleSession(ctx, a, req.MentorshipID, req.SessionInput)
	if err != nil {
		return fail(err)
	}
	return encode(view.NewMentorship(m))
}

func (h *Handler) SubmitFeedback(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	a, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		MentorshipID string `json:"mentorshipId"`
		service.FeedbackInput
	}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := h.svc.SubmitFeedback(ctx, a, req.MentorshipID, req.FeedbackInput); err != nil {
		return fail(err)
	}
	return message("feedback submitted")
}
