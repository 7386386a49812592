package access

import (
	"errors"
	"testing"

	"alumni-portal/internal/apperr"
	"alumni-portal/internal/model"
)

func TestCheck(t *testing.T) {
	mentor := Actor{UserID: "m", Role: model.RoleAlumni}
	mentee := Actor{UserID: "s", Role: model.RoleStudent}
	stranger := Actor{UserID: "x", Role: model.RoleAlumni}
	admin := Actor{UserID: "a", Role: model.RoleAdmin}
	pair := Resource{MentorID: "m", MenteeID: "s"}
	owned := Resource{OwnerID: "m"}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		allow  bool
	}{
		{"mentor decides", mentor, DecideMentorship, pair, true},
		{"mentee cannot decide", mentee, DecideMentorship, pair, false},
		{"admin cannot decide for mentor", admin, DecideMentorship, pair, false},
		{"mentor schedules", mentor, ScheduleSession, pair, true},
		{"mentee schedules", mentee, ScheduleSession, pair, true},
		{"stranger cannot schedule", stranger, ScheduleSession, pair, false},
		{"mentee gives feedback", mentee, SubmitFeedback, pair, true},
		{"mentor cannot give feedback", mentor, SubmitFeedback, pair, false},
		{"alumni becomes mentor", mentor, BecomeMentor, Resource{}, true},
		{"student cannot become mentor", mentee, BecomeMentor, Resource{}, false},
		{"alumni posts job", mentor, PostJob, Resource{}, true},
		{"student cannot post job", mentee, PostJob, Resource{}, false},
		{"owner manages job", mentor, ManageJob, owned, true},
		{"admin manages job", admin, ManageJob, owned, true},
		{"stranger cannot manage event", stranger, ManageEvent, owned, false},
		{"admin moderates", admin, Moderate, Resource{}, true},
		{"alumni cannot moderate", mentor, Moderate, Resource{}, false},
		{"unknown action", admin, Action("nope"), Resource{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.actor, tt.action, tt.res)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow && !errors.Is(err, apperr.ErrForbidden) {
				t.Fatalf("expected Forbidden, got %v", err)
			}
		})
	}
}

func TestCheckWithoutActor(t *testing.T) {
	err := Check(Actor{}, Moderate, Resource{})
	if apperr.CodeOf(err) != apperr.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}
