package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumni-portal/internal/middleware"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (a *API) handleListMentors(w http.ResponseWriter, r *http.Request) {
	p, err := pageQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	res, err := a.svc.ListMentors(r.Context(), r.URL.Query().Get("expertise"), p)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPage(res, view.NewUser))
}

func (a *API) handleRegisterMentor(w http.ResponseWriter, r *http.Request) {
	var in service.MentorProfileInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.RegisterMentor(r.Context(), actor(r), in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "registered as mentor")
}

func (a *API) handleRequestMentorship(w http.ResponseWriter, r *http.Request) {
	var in service.MentorshipRequest
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	m, err := a.svc.RequestMentorship(r.Context(), actor(r), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.NewMentorship(m))
}

func (a *API) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	ms, err := a.svc.PendingRequests(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items(view.List(ms, view.NewMentorship)))
}

func (a *API) handleMyMentorships(w http.ResponseWriter, r *http.Request) {
	ms, err := a.svc.MyMentorships(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items(view.List(ms, view.NewMentorship)))
}

func (a *API) handleDecideMentorship(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status model.MentorshipStatus `json:"status"`
	}
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	m, err := a.svc.DecideMentorship(r.Context(), actor(r), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewMentorship(m))
}

func (a *API) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	var in service.SessionInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	m, err := a.svc.ScheduleSession(r.Context(), actor(r), chi.URLParam(r, "mentorshipId"), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewMentorship(m))
}

func (a *API) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var in service.FeedbackInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.SubmitFeedback(r.Context(), actor(r), chi.URLParam(r, "mentorshipId"), in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "feedback submitted")
}
