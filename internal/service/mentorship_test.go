package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
	"alumni-portal/internal/store"
	"alumni-portal/internal/store/memstore"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*service.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	svc := service.New(st, service.WithClock(func() time.Time { return fixedNow }))
	return svc, st
}

func addUser(t *testing.T, st store.Store, id string, role model.Role) access.Actor {
	t.Helper()
	u := &model.User{ID: id, Email: id + "@test.com", FirstName: id, LastName: "Test", Role: role, IsVerified: true}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return access.Actor{UserID: id, Role: role}
}

func addMentor(t *testing.T, st store.Store, id string, maxMentees *int) access.Actor {
	t.Helper()
	a := addUser(t, st, id, model.RoleAlumni)
	err := st.SetMentorProfile(context.Background(), id, model.MentorProfile{
		Expertise:  []string{"go"},
		Experience: 5,
		MaxMentees: maxMentees,
	})
	if err != nil {
		t.Fatalf("mentor profile: %v", err)
	}
	return a
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func request(mentorID string) service.MentorshipRequest {
	return service.MentorshipRequest{
		MentorID:      mentorID,
		Domain:        "backend",
		Goals:         "learn go",
		PreferredMode: model.ModeOnline,
		Message:       "hello",
	}
}

func wantCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if got := apperr.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %s (%v)", code, got, err)
	}
}

func TestRequestMentorship(t *testing.T) {
	svc, st := setup(t)
	mentor := addMentor(t, st, "mentor", intp(2))
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	m, err := svc.RequestMentorship(context.Background(), mentee, request(mentor.UserID))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if m.ID == "" {
		t.Fatal("empty id")
	}
	if m.Status != model.MentorshipPending {
		t.Errorf("status: got %s", m.Status)
	}
	if m.MentorID != "mentor" || m.MenteeID != "mentee" {
		t.Errorf("participants: %s/%s", m.MentorID, m.MenteeID)
	}
	if m.StartDate != nil {
		t.Error("pending request should have no start date")
	}
}

func TestRequestMentorshipDefaultsMode(t *testing.T) {
	svc, st := setup(t)
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	req := request(mentor.UserID)
	req.PreferredMode = ""
	m, err := svc.RequestMentorship(context.Background(), mentee, req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if m.PreferredMode != model.ModeOnline {
		t.Errorf("mode: got %s", m.PreferredMode)
	}
}

func TestRequestMentorshipValidation(t *testing.T) {
	svc, st := setup(t)
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	tests := []struct {
		name  string
		actor access.Actor
		edit  func(*service.MentorshipRequest)
	}{
		{"missing domain", mentee, func(r *service.MentorshipRequest) { r.Domain = "" }},
		{"missing goals", mentee, func(r *service.MentorshipRequest) { r.Goals = "" }},
		{"missing mentor", mentee, func(r *service.MentorshipRequest) { r.MentorID = "" }},
		{"bad mode", mentee, func(r *service.MentorshipRequest) { r.PreferredMode = "carrier-pigeon" }},
		{"self request", mentor, func(r *service.MentorshipRequest) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(mentor.UserID)
			tt.edit(&req)
			_, err := svc.RequestMentorship(context.Background(), tt.actor, req)
			wantCode(t, err, apperr.CodeValidation)
		})
	}
}

func TestRequestMentorshipUnknownMentor(t *testing.T) {
	svc, st := setup(t)
	mentee := addUser(t, st, "mentee", model.RoleStudent)
	plain := addUser(t, st, "plain", model.RoleAlumni)

	_, err := svc.RequestMentorship(context.Background(), mentee, request("nobody"))
	wantCode(t, err, apperr.CodeNotFound)

	// exists but never registered as mentor
	_, err = svc.RequestMentorship(context.Background(), mentee, request(plain.UserID))
	wantCode(t, err, apperr.CodeNotFound)
}

func TestRequestMentorshipDuplicateActive(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	first, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err = svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	wantCode(t, err, apperr.CodeConflict)

	// still blocked once accepted
	if _, err := svc.DecideMentorship(ctx, mentor, first.ID, model.MentorshipAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	wantCode(t, err, apperr.CodeConflict)
}

func TestRequestAfterRejectionAllowed(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	first, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	if _, err := svc.DecideMentorship(ctx, mentor, first.ID, model.MentorshipRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID)); err != nil {
		t.Fatalf("request after rejection: %v", err)
	}
}

func TestRequestMentorshipCapacityCountsAcceptedOnly(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", intp(1))
	a := addUser(t, st, "a", model.RoleStudent)
	b := addUser(t, st, "b", model.RoleStudent)
	c := addUser(t, st, "c", model.RoleStudent)

	first, err := svc.RequestMentorship(ctx, a, request(mentor.UserID))
	if err != nil {
		t.Fatalf("a: %v", err)
	}

	// a pending request does not consume the only slot
	second, err := svc.RequestMentorship(ctx, b, request(mentor.UserID))
	if err != nil {
		t.Fatalf("pending should not block pending: %v", err)
	}
	if second.Status != model.MentorshipPending {
		t.Errorf("status: got %s", second.Status)
	}

	if _, err := svc.DecideMentorship(ctx, mentor, first.ID, model.MentorshipAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// now one accepted mentee fills maxMentees=1
	_, err = svc.RequestMentorship(ctx, c, request(mentor.UserID))
	wantCode(t, err, apperr.CodeCapacityExceeded)
}

func TestDecideMentorship(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)
	other := addUser(t, st, "other", model.RoleAlumni)

	m, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))

	t.Run("not found", func(t *testing.T) {
		_, err := svc.DecideMentorship(ctx, mentor, "missing", model.MentorshipAccepted)
		wantCode(t, err, apperr.CodeNotFound)
	})
	t.Run("not the mentor", func(t *testing.T) {
		_, err := svc.DecideMentorship(ctx, other, m.ID, model.MentorshipAccepted)
		wantCode(t, err, apperr.CodeForbidden)
		_, err = svc.DecideMentorship(ctx, mentee, m.ID, model.MentorshipAccepted)
		wantCode(t, err, apperr.CodeForbidden)
	})
	t.Run("bad decision", func(t *testing.T) {
		_, err := svc.DecideMentorship(ctx, mentor, m.ID, model.MentorshipCompleted)
		wantCode(t, err, apperr.CodeValidation)
	})
	t.Run("accept", func(t *testing.T) {
		got, err := svc.DecideMentorship(ctx, mentor, m.ID, model.MentorshipAccepted)
		if err != nil {
			t.Fatalf("accept: %v", err)
		}
		if got.Status != model.MentorshipAccepted {
			t.Errorf("status: got %s", got.Status)
		}
		if got.StartDate == nil || !got.StartDate.Equal(fixedNow) {
			t.Errorf("start date: got %v", got.StartDate)
		}
		stored, _ := st.GetMentorship(ctx, m.ID)
		if stored.Status != model.MentorshipAccepted || stored.StartDate == nil {
			t.Error("decision not persisted")
		}
	})
}

func TestDecideRejectLeavesNoStartDate(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	m, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	got, err := svc.DecideMentorship(ctx, mentor, m.ID, model.MentorshipRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != model.MentorshipRejected || got.StartDate != nil {
		t.Errorf("unexpected record: %+v", got)
	}
}

// Accepting does not re-check capacity, so two pending requests accepted
// back to back can exceed maxMentees.
func TestDecideDoesNotRecheckCapacity(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", intp(1))
	a := addUser(t, st, "a", model.RoleStudent)
	b := addUser(t, st, "b", model.RoleStudent)

	ma, _ := svc.RequestMentorship(ctx, a, request(mentor.UserID))
	mb, _ := svc.RequestMentorship(ctx, b, request(mentor.UserID))

	for _, id := range []string{ma.ID, mb.ID} {
		if _, err := svc.DecideMentorship(ctx, mentor, id, model.MentorshipAccepted); err != nil {
			t.Fatalf("accept %s: %v", id, err)
		}
	}
	n, _ := st.CountAccepted(ctx, mentor.UserID)
	if n != 2 {
		t.Errorf("expected 2 accepted, got %d", n)
	}
}

func TestDecideOnlyPending(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	a := addUser(t, st, "a", model.RoleStudent)
	b := addUser(t, st, "b", model.RoleStudent)

	accepted, _ := svc.RequestMentorship(ctx, a, request(mentor.UserID))
	if _, err := svc.DecideMentorship(ctx, mentor, accepted.ID, model.MentorshipAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	rejected, _ := svc.RequestMentorship(ctx, b, request(mentor.UserID))
	if _, err := svc.DecideMentorship(ctx, mentor, rejected.ID, model.MentorshipRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	tests := []struct {
		name     string
		id       string
		decision model.MentorshipStatus
		want     model.MentorshipStatus
	}{
		{"reject accepted", accepted.ID, model.MentorshipRejected, model.MentorshipAccepted},
		{"accept accepted", accepted.ID, model.MentorshipAccepted, model.MentorshipAccepted},
		{"accept rejected", rejected.ID, model.MentorshipAccepted, model.MentorshipRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DecideMentorship(ctx, mentor, tt.id, tt.decision)
			wantCode(t, err, apperr.CodeConflict)
			stored, _ := st.GetMentorship(ctx, tt.id)
			if stored.Status != tt.want {
				t.Errorf("status changed to %s", stored.Status)
			}
		})
	}
}

// A rejected request cannot be revived once the mentee has asked again.
func TestReRequestAfterRejectKeepsOneActive(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	first, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	if _, err := svc.DecideMentorship(ctx, mentor, first.ID, model.MentorshipRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	second, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	if err != nil {
		t.Fatalf("second request: %v", err)
	}

	_, err = svc.DecideMentorship(ctx, mentor, first.ID, model.MentorshipAccepted)
	wantCode(t, err, apperr.CodeConflict)

	active, err := st.FindActiveBetween(ctx, mentor.UserID, mentee.UserID)
	if err != nil || active.ID != second.ID {
		t.Fatalf("active record: %+v, %v", active, err)
	}
	if _, err := svc.DecideMentorship(ctx, mentor, second.ID, model.MentorshipAccepted); err != nil {
		t.Fatalf("accept second: %v", err)
	}
	if n, _ := st.CountAccepted(ctx, mentor.UserID); n != 1 {
		t.Errorf("expected 1 accepted, got %d", n)
	}
}

// uniqueIndexStore fails status writes the way a unique index does.
type uniqueIndexStore struct {
	*memstore.Store
}

func (uniqueIndexStore) SetMentorshipStatus(context.Context, string, model.MentorshipStatus, *time.Time) error {
	return fmt.Errorf("%w: mentorships_active_pair", store.ErrDuplicate)
}

func TestDecideDuplicateIsConflict(t *testing.T) {
	mem := memstore.New()
	svc := service.New(uniqueIndexStore{mem}, service.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	mentor := addMentor(t, mem, "mentor", nil)
	mentee := addUser(t, mem, "mentee", model.RoleStudent)

	m, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	_, err = svc.DecideMentorship(ctx, mentor, m.ID, model.MentorshipAccepted)
	wantCode(t, err, apperr.CodeConflict)
}

func TestScheduleSession(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)
	other := addUser(t, st, "other", model.RoleAlumni)
	m, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))

	when := fixedNow.Add(48 * time.Hour)
	in := service.SessionInput{Date: when, Duration: 60, Mode: "online", Notes: "intro"}

	got, err := svc.ScheduleSession(ctx, mentor, m.ID, in)
	if err != nil {
		t.Fatalf("mentor schedule: %v", err)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].ID == "" {
		t.Fatalf("expected 1 session with id, got %+v", got.Sessions)
	}

	// same slot again, from the mentee: overlaps are allowed
	got, err = svc.ScheduleSession(ctx, mentee, m.ID, in)
	if err != nil {
		t.Fatalf("mentee schedule: %v", err)
	}
	if len(got.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got.Sessions))
	}
	if got.Sessions[0].ID == got.Sessions[1].ID {
		t.Error("session ids should differ")
	}

	_, err = svc.ScheduleSession(ctx, other, m.ID, in)
	wantCode(t, err, apperr.CodeForbidden)

	_, err = svc.ScheduleSession(ctx, mentor, "missing", in)
	wantCode(t, err, apperr.CodeNotFound)

	_, err = svc.ScheduleSession(ctx, mentor, m.ID, service.SessionInput{Duration: 30})
	wantCode(t, err, apperr.CodeValidation)

	stored, _ := st.GetMentorship(ctx, m.ID)
	if len(stored.Sessions) != 2 {
		t.Errorf("stored sessions: %d", len(stored.Sessions))
	}
}

func TestSubmitFeedback(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)
	m, _ := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
	m, _ = svc.ScheduleSession(ctx, mentor, m.ID, service.SessionInput{Date: fixedNow, Duration: 45})
	sessionID := m.Sessions[0].ID

	if err := svc.SubmitFeedback(ctx, mentee, m.ID, service.FeedbackInput{SessionID: sessionID, Rating: 3, Comment: "ok"}); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	// last write wins
	if err := svc.SubmitFeedback(ctx, mentee, m.ID, service.FeedbackInput{SessionID: sessionID, Rating: 5, Comment: "great"}); err != nil {
		t.Fatalf("feedback again: %v", err)
	}
	stored, _ := st.GetMentorship(ctx, m.ID)
	fb := stored.Sessions[0].Feedback
	if fb == nil || fb.Rating != 5 || fb.Comment != "great" {
		t.Errorf("feedback: %+v", fb)
	}

	err := svc.SubmitFeedback(ctx, mentor, m.ID, service.FeedbackInput{SessionID: sessionID, Rating: 4})
	wantCode(t, err, apperr.CodeForbidden)

	err = svc.SubmitFeedback(ctx, mentee, m.ID, service.FeedbackInput{SessionID: "nope", Rating: 4})
	wantCode(t, err, apperr.CodeNotFound)

	err = svc.SubmitFeedback(ctx, mentee, "missing", service.FeedbackInput{SessionID: sessionID, Rating: 4})
	wantCode(t, err, apperr.CodeNotFound)

	err = svc.SubmitFeedback(ctx, mentee, m.ID, service.FeedbackInput{SessionID: sessionID, Rating: 9})
	wantCode(t, err, apperr.CodeValidation)
}

func TestMentorshipListings(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	a := addUser(t, st, "a", model.RoleStudent)
	b := addUser(t, st, "b", model.RoleStudent)

	ma, _ := svc.RequestMentorship(ctx, a, request(mentor.UserID))
	svc.RequestMentorship(ctx, b, request(mentor.UserID))
	svc.DecideMentorship(ctx, mentor, ma.ID, model.MentorshipAccepted)

	pending, err := svc.PendingRequests(ctx, mentor)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].MenteeID != "b" {
		t.Errorf("pending: %+v", pending)
	}

	mine, _ := svc.MyMentorships(ctx, a)
	if len(mine) != 1 || mine[0].ID != ma.ID {
		t.Errorf("mentee view: %+v", mine)
	}
	mine, _ = svc.MyMentorships(ctx, mentor)
	if len(mine) != 1 {
		t.Errorf("mentor view: %d", len(mine))
	}
}

func TestRegisterMentor(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	alum := addUser(t, st, "alum", model.RoleAlumni)
	student := addUser(t, st, "student", model.RoleStudent)

	in := service.MentorProfileInput{Expertise: []string{"go", "sql"}, Experience: 7, Availability: "weekends", MaxMentees: intp(3)}
	if err := svc.RegisterMentor(ctx, alum, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := svc.RegisterMentor(ctx, student, in)
	wantCode(t, err, apperr.CodeForbidden)

	list, err := svc.ListMentors(ctx, "sql", store.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 1 || list.Items[0].ID != "alum" {
		t.Errorf("mentors: %+v", list)
	}
	if list.Items[0].Mentor == nil || *list.Items[0].Mentor.MaxMentees != 3 {
		t.Error("mentor details not stored")
	}
}

// Property: with serialized callers, accepted mentorships never exceed
// maxMentees when every acceptance follows a successful request made after
// the previous acceptance.
func TestAcceptedWithinCapacitySequential(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", intp(3))

	for i := 0; i < 10; i++ {
		mentee := addUser(t, st, fmt.Sprintf("mentee-%d", i), model.RoleStudent)
		m, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
		if err != nil {
			if !errors.Is(err, apperr.ErrCapacityExceeded) {
				t.Fatalf("unexpected error: %v", err)
			}
			continue
		}
		if _, err := svc.DecideMentorship(ctx, mentor, m.ID, model.MentorshipAccepted); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}
	n, _ := st.CountAccepted(ctx, mentor.UserID)
	if n != 3 {
		t.Errorf("expected exactly 3 accepted, got %d", n)
	}
}

// Concurrent requests from the same mentee are serialized per mentor, so
// only one active request for the pair is ever created.
func TestConcurrentRequestsSamePair(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	mentor := addMentor(t, st, "mentor", nil)
	mentee := addUser(t, st, "mentee", model.RoleStudent)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestMentorship(ctx, mentee, request(mentor.UserID))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Errorf("expected 1 success and %d conflicts, got %d/%d", n-1, ok, conflicts)
	}
	active, _ := st.ListMentorships(ctx, store.MentorshipFilter{MentorID: mentor.UserID})
	if len(active) != 1 {
		t.Errorf("expected 1 record, got %d", len(active))
	}
}
