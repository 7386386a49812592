package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumni-portal/internal/middleware"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := pageQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	qs := r.URL.Query()
	res, err := a.svc.ListEvents(r.Context(), service.EventQuery{
		Type:   qs.Get("type"),
		Mode:   qs.Get("mode"),
		Status: model.EventStatus(qs.Get("status")),
		Page:   p,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPage(res, view.NewEvent))
}

func (a *API) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := a.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewEvent(e))
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in service.EventInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	e, err := a.svc.CreateEvent(r.Context(), actor(r), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.NewEvent(e))
}

func (a *API) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in service.EventPatch
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	e, err := a.svc.UpdateEvent(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewEvent(e))
}

func (a *API) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.DeleteEvent(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "event deleted")
}

func (a *API) handleRsvp(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status model.AttendeeStatus `json:"status"`
	}
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.Rsvp(r.Context(), actor(r), chi.URLParam(r, "id"), in.Status); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "rsvp updated")
}

func (a *API) handleCancelRsvp(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.CancelRsvp(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "rsvp cancelled")
}
