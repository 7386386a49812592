package model

import "time"

type Role string

const (
	RoleAlumni  Role = "alumni"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID             string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           Role
	GraduationYear int
	Department     string
	Course         string
	CurrentCompany string
	Designation    string
	City           string
	Country        string
	LinkedIn       string
	Bio            string
	Skills         []string
	IsMentor       bool
	Mentor         *MentorProfile
	IsVerified     bool
	IsSuspended    bool
	Connections    []string
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MentorProfile struct {
	Expertise    []string
	Experience   int
	Availability string
	MaxMentees   *int
}

// ProfileUpdate carries the user-editable fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	GraduationYear *int
	Department     *string
	Course         *string
	CurrentCompany *string
	Designation    *string
	City           *string
	Country        *string
	LinkedIn       *string
	Bio            *string
	Skills         []string
}

type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipAccepted  MentorshipStatus = "accepted"
	MentorshipRejected  MentorshipStatus = "rejected"
	MentorshipCompleted MentorshipStatus = "completed"
	MentorshipCancelled MentorshipStatus = "cancelled"
)

// Active reports whether the status blocks a second request for the same pair.
func (s MentorshipStatus) Active() bool {
	return s == MentorshipPending || s == MentorshipAccepted
}

func (s MentorshipStatus) Terminal() bool {
	return s == MentorshipRejected || s == MentorshipCompleted || s == MentorshipCancelled
}

type Mode string

const (
	ModeOnline   Mode = "online"
	ModeInPerson Mode = "in-person"
	ModeBoth     Mode = "both"
)

type Mentorship struct {
	ID             string
	MentorID       string
	MenteeID       string
	Status         MentorshipStatus
	Domain         string
	Goals          string
	PreferredMode  Mode
	RequestMessage string
	Sessions       []Session
	StartDate      *time.Time
	EndDate        *time.Time
	CreatedAt      time.Time
}

type Session struct {
	ID       string
	Date     time.Time
	Duration int // minutes
	Mode     string
	Notes    string
	Feedback *Feedback
}

type Feedback struct {
	Rating  int
	Comment string
}

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type AttendeeStatus string

const (
	AttendeeGoing    AttendeeStatus = "going"
	AttendeeMaybe    AttendeeStatus = "maybe"
	AttendeeNotGoing AttendeeStatus = "not-going"
)

type Event struct {
	ID                   string
	Title                string
	Description          string
	Type                 string
	Mode                 string
	StartDate            time.Time
	EndDate              time.Time
	Address              string
	City                 string
	VirtualLink          string
	OrganizerID          string
	TargetAudience       string
	MaxAttendees         *int
	RegistrationDeadline *time.Time
	Attendees            []Attendee
	Status               EventStatus
	IsApproved           bool
	CreatedAt            time.Time
}

type Attendee struct {
	UserID       string
	Status       AttendeeStatus
	RegisteredAt time.Time
}

// GoingCount counts only attendees whose status is going.
func (e *Event) GoingCount() int {
	n := 0
	for _, a := range e.Attendees {
		if a.Status == AttendeeGoing {
			n++
		}
	}
	return n
}

type JobStatus string

const (
	JobActive   JobStatus = "active"
	JobClosed   JobStatus = "closed"
	JobPending  JobStatus = "pending"
	JobRejected JobStatus = "rejected"
)

type Job struct {
	ID                  string
	Title               string
	Company             string
	Location            string
	Type                string
	Description         string
	Requirements        []string
	SalaryMin           *int
	SalaryMax           *int
	Currency            string
	Experience          string
	ApplicationDeadline *time.Time
	ApplicationLink     string
	ContactEmail        string
	PostedBy            string
	Status              JobStatus
	Views               int
	Applications        []Application
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Application struct {
	ApplicantID string
	AppliedAt   time.Time
	Status      string
}

type Stats struct {
	TotalUsers        int
	TotalAlumni       int
	TotalStudents     int
	VerifiedAlumni    int
	TotalJobs         int
	ActiveJobs        int
	TotalEvents       int
	UpcomingEvents    int
	TotalMentors      int
	ActiveMentorships int
}
