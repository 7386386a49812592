package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

func TestUpsertAttendeeReplacesInPlace(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateEvent(ctx, &model.Event{ID: "e1", Title: "Reunion"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Now().Add(-time.Hour)
	s.UpsertAttendee(ctx, "e1", model.Attendee{UserID: "u1", Status: model.AttendeeMaybe, RegisteredAt: first})
	s.UpsertAttendee(ctx, "e1", model.Attendee{UserID: "u1", Status: model.AttendeeGoing, RegisteredAt: time.Now()})

	e, _ := s.GetEvent(ctx, "e1")
	if len(e.Attendees) != 1 {
		t.Fatalf("expected 1 attendee, got %d", len(e.Attendees))
	}
	if e.Attendees[0].Status != model.AttendeeGoing {
		t.Errorf("status: got %s", e.Attendees[0].Status)
	}
	if !e.Attendees[0].RegisteredAt.Equal(first) {
		t.Error("registeredAt should be kept on update")
	}
}

func TestRemoveAttendeeIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateEvent(ctx, &model.Event{ID: "e1"})
	s.UpsertAttendee(ctx, "e1", model.Attendee{UserID: "u1", Status: model.AttendeeGoing})

	for i := 0; i < 2; i++ {
		if err := s.RemoveAttendee(ctx, "e1", "u1"); err != nil {
			t.Fatalf("remove #%d: %v", i, err)
		}
	}
	if _, err := s.FindAttendee(ctx, "e1", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.RemoveAttendee(ctx, "missing", "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing event should be not found, got %v", err)
	}
}

func TestFindActiveBetweenIgnoresClosed(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateMentorship(ctx, &model.Mentorship{ID: "m1", MentorID: "a", MenteeID: "b", Status: model.MentorshipRejected})

	if _, err := s.FindActiveBetween(ctx, "a", "b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rejected should not count as active: %v", err)
	}

	s.CreateMentorship(ctx, &model.Mentorship{ID: "m2", MentorID: "a", MenteeID: "b", Status: model.MentorshipPending})
	m, err := s.FindActiveBetween(ctx, "a", "b")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if m.ID != "m2" {
		t.Errorf("expected m2, got %s", m.ID)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateMentorship(ctx, &model.Mentorship{ID: "m1", Status: model.MentorshipAccepted})
	s.AppendSession(ctx, "m1", model.Session{ID: "s1", Duration: 30})

	m, _ := s.GetMentorship(ctx, "m1")
	m.Sessions[0].Duration = 999
	m.Status = model.MentorshipCancelled

	again, _ := s.GetMentorship(ctx, "m1")
	if again.Sessions[0].Duration != 30 || again.Status != model.MentorshipAccepted {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestAddApplicationDedup(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.CreateJob(ctx, &model.Job{ID: "j1", Status: model.JobActive})

	if err := s.AddApplication(ctx, "j1", model.Application{ApplicantID: "u1"}); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := s.AddApplication(ctx, "j1", model.Application{ApplicantID: "u1"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestListJobsFiltersAndPages(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, c := range []string{"Acme Corp", "acme labs", "Globex"} {
		s.CreateJob(ctx, &model.Job{ID: string(rune('a' + i)), Company: c, Status: model.JobActive})
		time.Sleep(time.Millisecond)
	}
	s.CreateJob(ctx, &model.Job{ID: "p", Company: "Acme", Status: model.JobPending})

	jobs, total, err := s.ListJobs(ctx, store.JobFilter{Status: model.JobActive, Company: "ACME", Page: store.Page{Page: 1, Limit: 1}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("total: got %d", total)
	}
	if len(jobs) != 1 || jobs[0].ID != "b" {
		t.Errorf("expected newest acme job first, got %+v", jobs)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateUser(ctx, &model.User{ID: "1", Email: "a@b.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, &model.User{ID: "2", Email: "A@B.com"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}
