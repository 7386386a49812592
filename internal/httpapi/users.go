package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumni-portal/internal/auth"
	"alumni-portal/internal/middleware"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/view"
)

func (a *API) writeAuth(w http.ResponseWriter, st int, u *model.User) {
	tok, err := auth.MakeToken(u.ID, u.Role, a.secret, a.ttl)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, st, view.Auth{Token: tok, User: view.NewUser(u)})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	u, err := a.svc.Register(r.Context(), in)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	a.writeAuth(w, http.StatusCreated, u)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, err)
		return
	}
	u, err := a.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	a.writeAuth(w, http.StatusOK, u)
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.Profile(r.Context(), actor(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewUser(u))
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd model.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		middleware.WriteError(w, err)
		return
	}
	u, err := a.svc.UpdateProfile(r.Context(), actor(r), upd)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewUser(u))
}

func (a *API) handleListAlumni(w http.ResponseWriter, r *http.Request) {
	p, err := pageQuery(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	batch, err := intQuery(r, "batch")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	qs := r.URL.Query()
	city := qs.Get("city")
	if city == "" {
		city = qs.Get("location")
	}
	res, err := a.svc.Alumni(r.Context(), service.AlumniQuery{
		Department: qs.Get("department"),
		Batch:      batch,
		City:       city,
		Company:    qs.Get("company"),
		Page:       p,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewPage(res, view.NewUser))
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items(view.List(users, view.NewUser)))
}

func (a *API) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Connect(r.Context(), actor(r), chi.URLParam(r, "userId")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeMessage(w, "connection added")
}
