// Package view renders records into the JSON shapes served by the REST API
// and carried inside gRPC structpb payloads. Password hashes never leave
// through here.
package view

import (
	"time"

	"alumni-portal/internal/model"
	"alumni-portal/internal/service"
)

type Mentor struct {
	Expertise    []string `json:"expertise"`
	Experience   int      `json:"experience"`
	Availability string   `json:"availability,omitempty"`
	MaxMentees   *int     `json:"maxMentees,omitempty"`
}

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Role           model.Role `json:"role"`
	GraduationYear int        `json:"graduationYear,omitempty"`
	Department     string     `json:"department,omitempty"`
	Course         string     `json:"course,omitempty"`
	CurrentCompany string     `json:"currentCompany,omitempty"`
	Designation    string     `json:"designation,omitempty"`
	City           string     `json:"city,omitempty"`
	Country        string     `json:"country,omitempty"`
	LinkedIn       string     `json:"linkedin,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Skills         []string   `json:"skills"`
	IsMentor       bool       `json:"isMentor"`
	Mentor         *Mentor    `json:"mentorDetails,omitempty"`
	IsVerified     bool       `json:"isVerified"`
	IsSuspended    bool       `json:"isSuspended"`
	Connections    []string   `json:"connections"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func NewUser(u *model.User) User {
	v := User{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		GraduationYear: u.GraduationYear,
		Department:     u.Department,
		Course:         u.Course,
		CurrentCompany: u.CurrentCompany,
		Designation:    u.Designation,
		City:           u.City,
		Country:        u.Country,
		LinkedIn:       u.LinkedIn,
		Bio:            u.Bio,
		Skills:         strs(u.Skills),
		IsMentor:       u.IsMentor,
		IsVerified:     u.IsVerified,
		IsSuspended:    u.IsSuspended,
		Connections:    strs(u.Connections),
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
	}
	if u.Mentor != nil {
		v.Mentor = &Mentor{
			Expertise:    strs(u.Mentor.Expertise),
			Experience:   u.Mentor.Experience,
			Availability: u.Mentor.Availability,
			MaxMentees:   u.Mentor.MaxMentees,
		}
	}
	return v
}

type Feedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type Session struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	Mode     string    `json:"mode,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

type Mentorship struct {
	ID             string                 `json:"id"`
	MentorID       string                 `json:"mentorId"`
	MenteeID       string                 `json:"menteeId"`
	Status         model.MentorshipStatus `json:"status"`
	Domain         string                 `json:"domain"`
	Goals          string                 `json:"goals"`
	PreferredMode  model.Mode             `json:"preferredMode"`
	RequestMessage string                 `json:"requestMessage,omitempty"`
	Sessions       []Session              `json:"sessions"`
	StartDate      *time.Time             `json:"startDate,omitempty"`
	EndDate        *time.Time             `json:"endDate,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

func NewMentorship(m *model.Mentorship) Mentorship {
	v := Mentorship{
		ID:             m.ID,
		MentorID:       m.MentorID,
		MenteeID:       m.MenteeID,
		Status:         m.Status,
		Domain:         m.Domain,
		Goals:          m.Goals,
		PreferredMode:  m.PreferredMode,
		RequestMessage: m.RequestMessage,
		Sessions:       make([]Session, 0, len(m.Sessions)),
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CreatedAt:      m.CreatedAt,
	}
	for _, s := range m.Sessions {
		sv := Session{ID: s.ID, Date: s.Date, Duration: s.Duration, Mode: s.Mode, Notes: s.Notes}
		if s.Feedback != nil {
			sv.Feedback = &Feedback{Rating: s.Feedback.Rating, Comment: s.Feedback.Comment}
		}
		v.Sessions = append(v.Sessions, sv)
	}
	return v
}

type Attendee struct {
	UserID       string               `json:"userId"`
	Status       model.AttendeeStatus `json:"status"`
	RegisteredAt time.Time            `json:"registeredAt"`
}

type Event struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Type                 string            `json:"type"`
	Mode                 string            `json:"mode"`
	StartDate            time.Time         `json:"startDate"`
	EndDate              time.Time         `json:"endDate"`
	Address              string            `json:"address,omitempty"`
	City                 string            `json:"city,omitempty"`
	VirtualLink          string            `json:"virtualLink,omitempty"`
	OrganizerID          string            `json:"organizerId"`
	TargetAudience       string            `json:"targetAudience"`
	MaxAttendees         *int              `json:"maxAttendees,omitempty"`
	RegistrationDeadline *time.Time        `json:"registrationDeadline,omitempty"`
	Attendees            []Attendee        `json:"attendees"`
	Going                int               `json:"going"`
	Status               model.EventStatus `json:"status"`
	IsApproved           bool              `json:"isApproved"`
	CreatedAt            time.Time         `json:"createdAt"`
}

func NewEvent(e *model.Event) Event {
	v := Event{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Type:                 e.Type,
		Mode:                 e.Mode,
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		Address:              e.Address,
		City:                 e.City,
		VirtualLink:          e.VirtualLink,
		OrganizerID:          e.OrganizerID,
		TargetAudience:       e.TargetAudience,
		MaxAttendees:         e.MaxAttendees,
		RegistrationDeadline: e.RegistrationDeadline,
		Attendees:            make([]Attendee, 0, len(e.Attendees)),
		Going:                e.GoingCount(),
		Status:               e.Status,
		IsApproved:           e.IsApproved,
		CreatedAt:            e.CreatedAt,
	}
	for _, a := range e.Attendees {
		v.Attendees = append(v.Attendees, Attendee(a))
	}
	return v
}

type Application struct {
	ApplicantID string    `json:"applicantId"`
	AppliedAt   time.Time `json:"appliedAt"`
	Status      string    `json:"status"`
}

type Job struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Company             string          `json:"company"`
	Location            string          `json:"location"`
	Type                string          `json:"type"`
	Description         string          `json:"description"`
	Requirements        []string        `json:"requirements"`
	SalaryMin           *int            `json:"salaryMin,omitempty"`
	SalaryMax           *int            `json:"salaryMax,omitempty"`
	Currency            string          `json:"currency"`
	Experience          string          `json:"experience,omitempty"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline,omitempty"`
	ApplicationLink     string          `json:"applicationLink,omitempty"`
	ContactEmail        string          `json:"contactEmail,omitempty"`
	PostedBy            string          `json:"postedBy"`
	Status              model.JobStatus `json:"status"`
	Views               int             `json:"views"`
	Applications        []Application   `json:"applications"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func NewJob(j *model.Job) Job {
	v := Job{
		ID:                  j.ID,
		Title:               j.Title,
		Company:             j.Company,
		Location:            j.Location,
		Type:                j.Type,
		Description:         j.Description,
		Requirements:        strs(j.Requirements),
		SalaryMin:           j.SalaryMin,
		SalaryMax:           j.SalaryMax,
		Currency:            j.Currency,
		Experience:          j.Experience,
		ApplicationDeadline: j.ApplicationDeadline,
		ApplicationLink:     j.ApplicationLink,
		ContactEmail:        j.ContactEmail,
		PostedBy:            j.PostedBy,
		Status:              j.Status,
		Views:               j.Views,
		Applications:        make([]Application, 0, len(j.Applications)),
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
	for _, a := range j.Applications {
		v.Applications = append(v.Applications, Application(a))
	}
	return v
}

type Stats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalAlumni       int `json:"totalAlumni"`
	TotalStudents     int `json:"totalStudents"`
	VerifiedAlumni    int `json:"verifiedAlumni"`
	TotalJobs         int `json:"totalJobs"`
	ActiveJobs        int `json:"activeJobs"`
	TotalEvents       int `json:"totalEvents"`
	UpcomingEvents    int `json:"upcomingEvents"`
	TotalMentors      int `json:"totalMentors"`
	ActiveMentorships int `json:"activeMentorships"`
}

func NewStats(s *model.Stats) Stats { return Stats(*s) }

// Auth is returned by register and login.
type Auth struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Page[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

func NewPage[M, T any](p service.Paged[M], conv func(*M) T) Page[T] {
	return Page[T]{
		Items:       List(p.Items, conv),
		Total:       p.Total,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
}

// List converts every item; the result is never nil.
func List[M, T any](items []M, conv func(*M) T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		out = append(out, conv(&items[i]))
	}
	return out
}

func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
