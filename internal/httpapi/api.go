// Package httpapi serves the portal as a JSON REST API under /api. Browser
// grpc-web calls are routed to the bridge on the same listener.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/middleware"
	"alumni-portal/internal/service"
	"alumni-portal/internal/store"
)

const maxBody = 1 << 20

type API struct {
	svc     *service.Service
	secret  string
	ttl     time.Duration
	limiter *middleware.RateLimiter
	web     http.Handler
}

type Option func(*API)

// WithGRPCWeb routes grpc-web calls for the portal service to h.
func WithGRPCWeb(h http.Handler) Option {
	return func(a *API) { a.web = h }
}

func New(svc *service.Service, secret string, ttl time.Duration, rl *middleware.RateLimiter, opts ...Option) *API {
	a := &API{svc: svc, secret: secret, ttl: ttl, limiter: rl}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)

	if a.web != nil {
		r.Post("/"+middleware.Service+"/{method}", a.web.ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.HTTPRateLimit(a.limiter))
			r.Post("/auth/register", a.handleRegister)
			r.Post("/auth/login", a.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.HTTPAuth(a.secret, a.svc))

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", a.handleGetProfile)
				r.Put("/profile", a.handleUpdateProfile)
				r.Get("/alumni", a.handleListAlumni)
				r.Get("/search", a.handleSearch)
				r.Post("/connect/{userId}", a.handleConnect)
			})

			r.Route("/mentorship", func(r chi.Router) {
				r.Get("/mentors", a.handleListMentors)
				r.Post("/register", a.handleRegisterMentor)
				r.Post("/request", a.handleRequestMentorship)
				r.Get("/requests", a.handlePendingRequests)
				r.Get("/my-mentorships", a.handleMyMentorships)
				r.Put("/request/{id}", a.handleDecideMentorship)
				r.Post("/session/{mentorshipId}", a.handleScheduleSession)
				r.Post("/session/{mentorshipId}/feedback", a.handleSubmitFeedback)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", a.handleListEvents)
				r.Post("/", a.handleCreateEvent)
				r.Get("/{id}", a.handleGetEvent)
				r.Put("/{id}", a.handleUpdateEvent)
				r.Delete("/{id}", a.handleDeleteEvent)
				r.Post("/{id}/rsvp", a.handleRsvp)
				r.Delete("/{id}/rsvp", a.handleCancelRsvp)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", a.handleListJobs)
				r.Post("/", a.handleCreateJob)
				r.Get("/{id}", a.handleGetJob)
				r.Put("/{id}", a.handleUpdateJob)
				r.Delete("/{id}", a.handleDeleteJob)
				r.Post("/{id}/apply", a.handleApplyJob)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", a.handleStats)
				r.Get("/users", a.handleListUsers)
				r.Put("/users/{id}/verify", a.handleVerifyUser)
				r.Put("/users/{id}/suspend", a.handleSuspendUser)
				r.Get("/jobs/pending", a.handlePendingJobs)
				r.Put("/jobs/{id}/approve", a.handleApproveJob)
				r.Get("/events/pending", a.handlePendingEvents)
				r.Put("/events/{id}/approve", a.handleApproveEvent)
			})
		})
	})

	return r
}

// Handler is the router wrapped in CORS handling for the given origins.
func (a *API) Handler(origins []string) http.Handler {
	return Cors(origins).Handler(a.Router())
}

func actor(r *http.Request) access.Actor {
	act, _ := middleware.ActorFrom(r.Context())
	return act
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("invalid JSON body")
}

func writeJSON(w http.ResponseWriter, st int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(st)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func items[T any](list []T) map[string]any {
	return map[string]any{"items": list}
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name + " must be a number")
	}
	return n, nil
}

func pageQuery(r *http.Request) (store.Page, error) {
	page, err := intQuery(r, "page")
	if err != nil {
		return store.Page{}, err
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		return store.Page{}, err
	}
	return store.Page{Page: page, Limit: limit}, nil
}
