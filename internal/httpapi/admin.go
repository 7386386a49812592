package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"alumni-portal/internal/apperr"
	"alumni-portal/internal/middleware"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.svc.Stats(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewStats(st))
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := pageQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	q := service.UserQuery{Role: model.Role(r.URL.Query().Get("role")), Page: p}
	if raw := r.URL.Query().Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.WriteError(w, apperr.Validation("verified must be true or false"))
			return
		}
		q.Verified = &v
	}
	res, err := a.svc.ListUsers(r.Context(), actor(r), q)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPage(res, view.NewUser))
}

func (a *API) handleVerifyUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.VerifyUser(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewUser(u))
}

func (a *API) handleSuspendUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Suspend bool `json:"suspend"`
	}
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	u, err := a.svc.SuspendUser(r.Context(), actor(r), chi.URLParam(r, "id"), in.Suspend)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewUser(u))
}

func (a *API) handlePendingJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.svc.PendingJobs(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items(view.List(jobs, view.NewJob)))
}

func (a *API) handlePendingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := a.svc.PendingEvents(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items(view.List(events, view.NewEvent)))
}

type approval struct {
	Approve bool `json:"approve"`
}

func (a *API) handleApproveJob(w http.ResponseWriter, r *http.Request) {
	var in approval
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	j, err := a.svc.SetJobApproval(r.Context(), actor(r), chi.URLParam(r, "id"), in.Approve)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewJob(j))
}

func (a *API) handleApproveEvent(w http.ResponseWriter, r *http.Request) {
	var in approval
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	e, err := a.svc.SetEventApproval(r.Context(), actor(r), chi.URLParam(r, "id"), in.Approve)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewEvent(e))
}
