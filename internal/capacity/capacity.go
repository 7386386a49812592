// Package capacity decides whether a target can take one more admission.
package capacity

// CanAdmit reports whether a target holding current admissions may admit
// another. A nil or non-positive limit means the target is unbounded.
//
// Callers count only the status class that consumes capacity: accepted
// mentorships for a mentor, going attendees for an event.
func CanAdmit(current int, limit *int) bool {
	if limit == nil || *limit <= 0 {
		return true
	}
	return current < *limit
}
