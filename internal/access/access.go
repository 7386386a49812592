// Package access holds every role and relationship rule of the portal in
// one place. Transports resolve the actor; workflows ask Check before they
// mutate anything.
package access

import (
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/model"
)

// Actor is the authenticated caller as vouched for by the token.
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

type Action string

const (
	DecideMentorship Action = "mentorship.decide"
	ScheduleSession  Action = "mentorship.schedule"
	SubmitFeedback   Action = "mentorship.feedback"
	BecomeMentor     Action = "mentor.register"
	PostJob          Action = "job.post"
	ManageJob        Action = "job.manage"
	ManageEvent      Action = "event.manage"
	Moderate         Action = "admin.moderate"
)

// Resource describes the relations of the record being acted on. Only the
// fields relevant to the action need to be set.
type Resource struct {
	OwnerID  string
	MentorID string
	MenteeID string
}

// Check returns nil when actor may perform action on res, else a Forbidden error.
func Check(actor Actor, action Action, res Resource) error {
	if actor.UserID == "" {
		return apperr.New(apperr.CodeUnauthenticated, "no actor")
	}
	switch action {
	case DecideMentorship:
		if actor.UserID == res.MentorID {
			return nil
		}
		return apperr.Forbidden("not authorized to update this request")
	case ScheduleSession:
		if actor.UserID == res.MentorID || actor.UserID == res.MenteeID {
			return nil
		}
		return apperr.Forbidden("not authorized")
	case SubmitFeedback:
		if actor.UserID == res.MenteeID {
			return nil
		}
		return apperr.Forbidden("only mentees can provide feedback")
	case BecomeMentor:
		if actor.Role == model.RoleStudent {
			return apperr.Forbidden("students cannot register as mentors")
		}
		return nil
	case PostJob:
		if actor.Role == model.RoleStudent {
			return apperr.Forbidden("students cannot post jobs")
		}
		return nil
	case ManageJob, ManageEvent:
		if actor.IsAdmin() || actor.UserID == res.OwnerID {
			return nil
		}
		return apperr.Forbidden("not authorized to modify this record")
	case Moderate:
		if actor.IsAdmin() {
			return nil
		}
		return apperr.Forbidden("admin access required")
	}
	return apperr.Forbidden("unknown action")
}
