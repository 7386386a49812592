package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumni-portal/internal/middleware"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (a *API) handleListJobs(w http.ResponseWriter, r *http.Request) {
	p, err := pageQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	qs := r.URL.Query()
	res, err := a.svc.ListJobs(r.Context(), service.JobQuery{
		Type:     qs.Get("type"),
		Location: qs.Get("location"),
		Company:  qs.Get("company"),
		Page:     p,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPage(res, view.NewJob))
}

func (a *API) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := a.svc.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewJob(j))
}

func (a *API) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in service.JobInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	j, err := a.svc.CreateJob(r.Context(), actor(r), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.NewJob(j))
}

func (a *API) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var in service.JobPatch
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	j, err := a.svc.UpdateJob(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewJob(j))
}

func (a *API) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteJob(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "job deleted")
}

func (a *API) handleApplyJob(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.ApplyJob(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "application submitted")
}
