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
	"alumni-portal/internal/store/memstore"
)

func eventInput(max *int) service.EventInput {
	start := fixedNow.Add(7 * 24 * time.Hour)
	return service.EventInput{
		Title:        "Reunion",
		Description:  "class of 2010",
		Type:         "reunion",
		Mode:         "offline",
		StartDate:    start,
		EndDate:      start.Add(3 * time.Hour),
		City:         "Lagos",
		MaxAttendees: max,
	}
}

func newEvent(t *testing.T, svc *service.Service, organizer access.Actor, max *int) *model.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), organizer, eventInput(max))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func goingCount(t *testing.T, st *memstore.Store, id string) int {
	t.Helper()
	e, err := st.GetEvent(context.Background(), id)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	return e.GoingCount()
}

func TestCreateEvent(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	alum := addUser(t, st, "alum", model.RoleAlumni)

	e := newEvent(t, svc, admin, nil)
	if !e.IsApproved {
		t.Error("admin events should be approved")
	}
	if e.TargetAudience != "all" || e.Status != model.EventUpcoming {
		t.Errorf("defaults: %s/%s", e.TargetAudience, e.Status)
	}

	e = newEvent(t, svc, alum, nil)
	if e.IsApproved {
		t.Error("alumni events need approval")
	}

	bad := eventInput(nil)
	bad.EndDate = bad.StartDate.Add(-time.Hour)
	_, err := svc.CreateEvent(ctx, alum, bad)
	wantCode(t, err, apperr.CodeValidation)

	bad = eventInput(nil)
	bad.Type = "party"
	_, err = svc.CreateEvent(ctx, alum, bad)
	wantCode(t, err, apperr.CodeValidation)
}

func TestRsvpIdempotent(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	u := addUser(t, st, "u", model.RoleAlumni)
	e := newEvent(t, svc, admin, intp(5))

	for i := 0; i < 3; i++ {
		if err := svc.Rsvp(ctx, u, e.ID, model.AttendeeGoing); err != nil {
			t.Fatalf("rsvp %d: %v", i, err)
		}
	}
	got, _ := st.GetEvent(ctx, e.ID)
	if len(got.Attendees) != 1 {
		t.Fatalf("expected 1 attendee entry, got %d", len(got.Attendees))
	}
	if got.Attendees[0].Status != model.AttendeeGoing {
		t.Errorf("status: %s", got.Attendees[0].Status)
	}
}

func TestRsvpStatusChangeKeepsRegistration(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	u := addUser(t, st, "u", model.RoleAlumni)
	e := newEvent(t, svc, admin, nil)

	svc.Rsvp(ctx, u, e.ID, model.AttendeeMaybe)
	first, _ := st.FindAttendee(ctx, e.ID, u.UserID)

	if err := svc.Rsvp(ctx, u, e.ID, model.AttendeeNotGoing); err != nil {
		t.Fatalf("rsvp: %v", err)
	}
	got, _ := st.FindAttendee(ctx, e.ID, u.UserID)
	if got.Status != model.AttendeeNotGoing {
		t.Errorf("status: %s", got.Status)
	}
	if !got.RegisteredAt.Equal(first.RegisteredAt) {
		t.Error("registration time should not change")
	}
}

func TestRsvpCapacity(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	e := newEvent(t, svc, admin, intp(2))

	users := make([]access.Actor, 3)
	for i := range users {
		users[i] = addUser(t, st, fmt.Sprintf("u%d", i), model.RoleAlumni)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Rsvp(ctx, users[i], e.ID, model.AttendeeGoing); err != nil {
			t.Fatalf("rsvp %d: %v", i, err)
		}
	}
	err := svc.Rsvp(ctx, users[2], e.ID, model.AttendeeGoing)
	wantCode(t, err, apperr.CodeCapacityExceeded)

	if n := goingCount(t, st, e.ID); n != 2 {
		t.Errorf("going count: %d", n)
	}

	// maybe does not consume a seat, so it is still accepted
	if err := svc.Rsvp(ctx, users[2], e.ID, model.AttendeeMaybe); err != nil {
		t.Fatalf("maybe on full event: %v", err)
	}
}

// A maybe entry upgraded to going is an in-place update and is not gated by
// capacity, so the going count can exceed maxAttendees.
func TestRsvpMaybeToGoingBypassesCapacity(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	e := newEvent(t, svc, admin, intp(1))
	a := addUser(t, st, "a", model.RoleAlumni)
	b := addUser(t, st, "b", model.RoleAlumni)

	if err := svc.Rsvp(ctx, a, e.ID, model.AttendeeMaybe); err != nil {
		t.Fatalf("maybe: %v", err)
	}
	if err := svc.Rsvp(ctx, b, e.ID, model.AttendeeGoing); err != nil {
		t.Fatalf("going: %v", err)
	}
	if err := svc.Rsvp(ctx, a, e.ID, model.AttendeeGoing); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if n := goingCount(t, st, e.ID); n != 2 {
		t.Errorf("expected 2 going, got %d", n)
	}
}

func TestRsvpUnlimited(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	unset := newEvent(t, svc, admin, nil)
	zero := newEvent(t, svc, admin, intp(0))

	for i := 0; i < 10; i++ {
		u := addUser(t, st, fmt.Sprintf("u%d", i), model.RoleAlumni)
		for _, id := range []string{unset.ID, zero.ID} {
			if err := svc.Rsvp(ctx, u, id, model.AttendeeGoing); err != nil {
				t.Fatalf("rsvp: %v", err)
			}
		}
	}
	if n := goingCount(t, st, zero.ID); n != 10 {
		t.Errorf("zero limit should mean unlimited, got %d", n)
	}
}

func TestRsvpErrors(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	u := addUser(t, st, "u", model.RoleAlumni)
	e := newEvent(t, svc, admin, nil)

	err := svc.Rsvp(ctx, u, "missing", model.AttendeeGoing)
	wantCode(t, err, apperr.CodeNotFound)

	err = svc.Rsvp(ctx, u, e.ID, "interested")
	wantCode(t, err, apperr.CodeValidation)
}

func TestCancelRsvp(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	u := addUser(t, st, "u", model.RoleAlumni)
	e := newEvent(t, svc, admin, intp(1))

	svc.Rsvp(ctx, u, e.ID, model.AttendeeGoing)
	if err := svc.CancelRsvp(ctx, u, e.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.CancelRsvp(ctx, u, e.ID); err != nil {
		t.Fatalf("second cancel should be a no-op: %v", err)
	}
	got, _ := st.GetEvent(ctx, e.ID)
	if len(got.Attendees) != 0 {
		t.Errorf("attendees: %d", len(got.Attendees))
	}

	// seat is free again
	other := addUser(t, st, "other", model.RoleAlumni)
	if err := svc.Rsvp(ctx, other, e.ID, model.AttendeeGoing); err != nil {
		t.Fatalf("rsvp after cancel: %v", err)
	}

	err := svc.CancelRsvp(ctx, u, "missing")
	wantCode(t, err, apperr.CodeNotFound)
}

func TestConcurrentRsvpAdmitsExactlyMax(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	const max, callers = 5, 40
	e := newEvent(t, svc, admin, intp(max))

	actors := make([]access.Actor, callers)
	for i := range actors {
		actors[i] = addUser(t, st, fmt.Sprintf("u%d", i), model.RoleAlumni)
	}

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for _, a := range actors {
		wg.Add(1)
		go func(a access.Actor) {
			defer wg.Done()
			errs <- svc.Rsvp(ctx, a, e.ID, model.AttendeeGoing)
		}(a)
	}
	wg.Wait()
	close(errs)

	admitted := 0
	for err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, apperr.ErrCapacityExceeded):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if admitted != max {
		t.Errorf("admitted %d, want %d", admitted, max)
	}
	if n := goingCount(t, st, e.ID); n != max {
		t.Errorf("going count %d, want %d", n, max)
	}
}

func TestEventModeration(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	alum := addUser(t, st, "alum", model.RoleAlumni)
	e := newEvent(t, svc, alum, nil)

	list, _ := svc.ListEvents(ctx, service.EventQuery{})
	if list.Total != 0 {
		t.Fatalf("unapproved event listed: %d", list.Total)
	}

	_, err := svc.SetEventApproval(ctx, alum, e.ID, true)
	wantCode(t, err, apperr.CodeForbidden)

	pending, err := svc.PendingEvents(ctx, admin)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending: %v %d", err, len(pending))
	}

	if _, err := svc.SetEventApproval(ctx, admin, e.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	list, _ = svc.ListEvents(ctx, service.EventQuery{})
	if list.Total != 1 || list.Items[0].ID != e.ID {
		t.Errorf("listing after approval: %+v", list)
	}

	_, err = svc.SetEventApproval(ctx, admin, "missing", true)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestUpdateDeleteEvent(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	admin := addUser(t, st, "admin", model.RoleAdmin)
	owner := addUser(t, st, "owner", model.RoleAlumni)
	other := addUser(t, st, "other", model.RoleAlumni)
	e := newEvent(t, svc, owner, intp(10))
	svc.Rsvp(ctx, other, e.ID, model.AttendeeGoing)

	in := service.EventPatch{Title: strp("Renamed"), MaxAttendees: intp(20)}
	_, err := svc.UpdateEvent(ctx, other, e.ID, in)
	wantCode(t, err, apperr.CodeForbidden)

	got, err := svc.UpdateEvent(ctx, owner, e.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Renamed" || *got.MaxAttendees != 20 {
		t.Errorf("update not applied: %+v", got)
	}
	stored, _ := st.GetEvent(ctx, e.ID)
	if stored.OrganizerID != owner.UserID || len(stored.Attendees) != 1 {
		t.Error("update must keep organizer and attendees")
	}

	err = svc.DeleteEvent(ctx, other, e.ID)
	wantCode(t, err, apperr.CodeForbidden)
	if err := svc.DeleteEvent(ctx, admin, e.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	_, err = svc.GetEvent(ctx, e.ID)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestUpdateEventPartial(t *testing.T) {
	svc, st := setup(t)
	ctx := context.Background()
	owner := addUser(t, st, "owner", model.RoleAlumni)
	e := newEvent(t, svc, owner, intp(10))

	got, err := svc.UpdateEvent(ctx, owner, e.ID, service.EventPatch{Title: strp("Renamed")})
	if err != nil {
		t.Fatalf("title-only update: %v", err)
	}
	stored, _ := st.GetEvent(ctx, e.ID)
	for _, ev := range []*model.Event{got, stored} {
		if ev.Title != "Renamed" {
			t.Errorf("title: got %q", ev.Title)
		}
		if ev.MaxAttendees == nil || *ev.MaxAttendees != 10 {
			t.Errorf("capacity lost: %v", ev.MaxAttendees)
		}
		if ev.Description != e.Description || ev.Type != e.Type || ev.Mode != e.Mode || ev.City != e.City {
			t.Errorf("untouched fields changed: %+v", ev)
		}
		if !ev.StartDate.Equal(e.StartDate) || !ev.EndDate.Equal(e.EndDate) {
			t.Errorf("dates changed: %v - %v", ev.StartDate, ev.EndDate)
		}
	}

	tests := []struct {
		name  string
		patch service.EventPatch
	}{
		{"empty title", service.EventPatch{Title: strp("")}},
		{"bad mode", service.EventPatch{Mode: strp("telepathic")}},
		{"end before start", service.EventPatch{EndDate: &fixedNow}},
		{"negative capacity", service.EventPatch{MaxAttendees: intp(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateEvent(ctx, owner, e.ID, tt.patch)
			wantCode(t, err, apperr.CodeValidation)
		})
	}
	stored, _ = st.GetEvent(ctx, e.ID)
	if stored.Title != "Renamed" || *stored.MaxAttendees != 10 {
		t.Errorf("rejected update leaked: %+v", stored)
	}
}
