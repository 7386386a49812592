package mongo

import (
	"time"

	"alumni-portal/internal/model"
)

// Records are stored in the shape the portal has always used in MongoDB:
// sessions, attendees and applications live inside their parent document.

type mentorDoc struct {
	Expertise    []string `bson:"expertise"`
	Experience   int      `bson:"experience"`
	Availability string   `bson:"availability"`
	MaxMentees   *int     `bson:"max_mentees,omitempty"`
}

type userDoc struct {
	ID             string     `bson:"_id"`
	Email          string     `bson:"email"`
	PasswordHash   string     `bson:"password_hash"`
	FirstName      string     `bson:"first_name"`
	LastName       string     `bson:"last_name"`
	Role           model.Role `bson:"role"`
	GraduationYear int        `bson:"graduation_year"`
	Department     string     `bson:"department"`
	Course         string     `bson:"course"`
	CurrentCompany string     `bson:"current_company"`
	Designation    string     `bson:"designation"`
	City           string     `bson:"city"`
	Country        string     `bson:"country"`
	LinkedIn       string     `bson:"linkedin"`
	Bio            string     `bson:"bio"`
	Skills         []string   `bson:"skills"`
	IsMentor       bool       `bson:"is_mentor"`
	Mentor         *mentorDoc `bson:"mentor,omitempty"`
	IsVerified     bool       `bson:"is_verified"`
	IsSuspended    bool       `bson:"is_suspended"`
	Connections    []string   `bson:"connections"`
	LastLogin      *time.Time `bson:"last_login,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

func toUserDoc(u *model.User) userDoc {
	d := userDoc{
		ID:             u.ID,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
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
		Skills:         nonNil(u.Skills),
		IsMentor:       u.IsMentor,
		IsVerified:     u.IsVerified,
		IsSuspended:    u.IsSuspended,
		Connections:    nonNil(u.Connections),
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.Mentor != nil {
		m := toMentorDoc(*u.Mentor)
		d.Mentor = &m
	}
	return d
}

func toMentorDoc(p model.MentorProfile) mentorDoc {
	return mentorDoc{
		Expertise:    nonNil(p.Expertise),
		Experience:   p.Experience,
		Availability: p.Availability,
		MaxMentees:   p.MaxMentees,
	}
}

func (d *userDoc) model() *model.User {
	u := &model.User{
		ID:             d.ID,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Role:           d.Role,
		GraduationYear: d.GraduationYear,
		Department:     d.Department,
		Course:         d.Course,
		CurrentCompany: d.CurrentCompany,
		Designation:    d.Designation,
		City:           d.City,
		Country:        d.Country,
		LinkedIn:       d.LinkedIn,
		Bio:            d.Bio,
		Skills:         d.Skills,
		IsMentor:       d.IsMentor,
		IsVerified:     d.IsVerified,
		IsSuspended:    d.IsSuspended,
		Connections:    d.Connections,
		LastLogin:      d.LastLogin,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Mentor != nil {
		u.Mentor = &model.MentorProfile{
			Expertise:    d.Mentor.Expertise,
			Experience:   d.Mentor.Experience,
			Availability: d.Mentor.Availability,
			MaxMentees:   d.Mentor.MaxMentees,
		}
	}
	return u
}

type feedbackDoc struct {
	Rating  int    `bson:"rating"`
	Comment string `bson:"comment"`
}

type sessionDoc struct {
	ID       string       `bson:"id"`
	Date     time.Time    `bson:"date"`
	Duration int          `bson:"duration"`
	Mode     string       `bson:"mode"`
	Notes    string       `bson:"notes"`
	Feedback *feedbackDoc `bson:"feedback,omitempty"`
}

// mentorshipDoc.Active mirrors Status.Active() so a partial unique index
// can enforce one active mentorship per pair.
type mentorshipDoc struct {
	ID             string                 `bson:"_id"`
	MentorID       string                 `bson:"mentor_id"`
	MenteeID       string                 `bson:"mentee_id"`
	Status         model.MentorshipStatus `bson:"status"`
	Active         bool                   `bson:"active"`
	Domain         string                 `bson:"domain"`
	Goals          string                 `bson:"goals"`
	PreferredMode  model.Mode             `bson:"preferred_mode"`
	RequestMessage string                 `bson:"request_message"`
	Sessions       []sessionDoc           `bson:"sessions"`
	StartDate      *time.Time             `bson:"start_date,omitempty"`
	EndDate        *time.Time             `bson:"end_date,omitempty"`
	CreatedAt      time.Time              `bson:"created_at"`
}

func toMentorshipDoc(m *model.Mentorship) mentorshipDoc {
	d := mentorshipDoc{
		ID:             m.ID,
		MentorID:       m.MentorID,
		MenteeID:       m.MenteeID,
		Status:         m.Status,
		Active:         m.Status.Active(),
		Domain:         m.Domain,
		Goals:          m.Goals,
		PreferredMode:  m.PreferredMode,
		RequestMessage: m.RequestMessage,
		Sessions:       make([]sessionDoc, 0, len(m.Sessions)),
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CreatedAt:      m.CreatedAt,
	}
	for _, s := range m.Sessions {
		d.Sessions = append(d.Sessions, toSessionDoc(s))
	}
	return d
}

func toSessionDoc(s model.Session) sessionDoc {
	d := sessionDoc{ID: s.ID, Date: s.Date, Duration: s.Duration, Mode: s.Mode, Notes: s.Notes}
	if s.Feedback != nil {
		d.Feedback = &feedbackDoc{Rating: s.Feedback.Rating, Comment: s.Feedback.Comment}
	}
	return d
}

func (d *mentorshipDoc) model() *model.Mentorship {
	m := &model.Mentorship{
		ID:             d.ID,
		MentorID:       d.MentorID,
		MenteeID:       d.MenteeID,
		Status:         d.Status,
		Domain:         d.Domain,
		Goals:          d.Goals,
		PreferredMode:  d.PreferredMode,
		RequestMessage: d.RequestMessage,
		Sessions:       make([]model.Session, 0, len(d.Sessions)),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		CreatedAt:      d.CreatedAt,
	}
	for _, s := range d.Sessions {
		sess := model.Session{ID: s.ID, Date: s.Date, Duration: s.Duration, Mode: s.Mode, Notes: s.Notes}
		if s.Feedback != nil {
			sess.Feedback = &model.Feedback{Rating: s.Feedback.Rating, Comment: s.Feedback.Comment}
		}
		m.Sessions = append(m.Sessions, sess)
	}
	return m
}

type attendeeDoc struct {
	UserID       string               `bson:"user_id"`
	Status       model.AttendeeStatus `bson:"status"`
	RegisteredAt time.Time            `bson:"registered_at"`
}

type eventDoc struct {
	ID                   string            `bson:"_id"`
	Title                string            `bson:"title"`
	Description          string            `bson:"description"`
	Type                 string            `bson:"type"`
	Mode                 string            `bson:"mode"`
	StartDate            time.Time         `bson:"start_date"`
	EndDate              time.Time         `bson:"end_date"`
	Address              string            `bson:"address"`
	City                 string            `bson:"city"`
	VirtualLink          string            `bson:"virtual_link"`
	OrganizerID          string            `bson:"organizer_id"`
	TargetAudience       string            `bson:"target_audience"`
	MaxAttendees         *int              `bson:"max_attendees,omitempty"`
	RegistrationDeadline *time.Time        `bson:"registration_deadline,omitempty"`
	Attendees            []attendeeDoc     `bson:"attendees"`
	Status               model.EventStatus `bson:"status"`
	IsApproved           bool              `bson:"is_approved"`
	CreatedAt            time.Time         `bson:"created_at"`
}

func toEventDoc(e *model.Event) eventDoc {
	d := eventDoc{
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
		Attendees:            make([]attendeeDoc, 0, len(e.Attendees)),
		Status:               e.Status,
		IsApproved:           e.IsApproved,
		CreatedAt:            e.CreatedAt,
	}
	for _, a := range e.Attendees {
		d.Attendees = append(d.Attendees, attendeeDoc(a))
	}
	return d
}

func (d *eventDoc) model() *model.Event {
	e := &model.Event{
		ID:                   d.ID,
		Title:                d.Title,
		Description:          d.Description,
		Type:                 d.Type,
		Mode:                 d.Mode,
		StartDate:            d.StartDate,
		EndDate:              d.EndDate,
		Address:              d.Address,
		City:                 d.City,
		VirtualLink:          d.VirtualLink,
		OrganizerID:          d.OrganizerID,
		TargetAudience:       d.TargetAudience,
		MaxAttendees:         d.MaxAttendees,
		RegistrationDeadline: d.RegistrationDeadline,
		Attendees:            make([]model.Attendee, 0, len(d.Attendees)),
		Status:               d.Status,
		IsApproved:           d.IsApproved,
		CreatedAt:            d.CreatedAt,
	}
	for _, a := range d.Attendees {
		e.Attendees = append(e.Attendees, model.Attendee(a))
	}
	return e
}

type applicationDoc struct {
	ApplicantID string    `bson:"applicant_id"`
	AppliedAt   time.Time `bson:"applied_at"`
	Status      string    `bson:"status"`
}

type jobDoc struct {
	ID                  string           `bson:"_id"`
	Title               string           `bson:"title"`
	Company             string           `bson:"company"`
	Location            string           `bson:"location"`
	Type                string           `bson:"type"`
	Description         string           `bson:"description"`
	Requirements        []string         `bson:"requirements"`
	SalaryMin           *int             `bson:"salary_min,omitempty"`
	SalaryMax           *int             `bson:"salary_max,omitempty"`
	Currency            string           `bson:"currency"`
	Experience          string           `bson:"experience"`
	ApplicationDeadline *time.Time       `bson:"application_deadline,omitempty"`
	ApplicationLink     string           `bson:"application_link"`
	ContactEmail        string           `bson:"contact_email"`
	PostedBy            string           `bson:"posted_by"`
	Status              model.JobStatus  `bson:"status"`
	Views               int              `bson:"views"`
	Applications        []applicationDoc `bson:"applications"`
	CreatedAt           time.Time        `bson:"created_at"`
	UpdatedAt           time.Time        `bson:"updated_at"`
}

func toJobDoc(j *model.Job) jobDoc {
	d := jobDoc{
		ID:                  j.ID,
		Title:               j.Title,
		Company:             j.Company,
		Location:            j.Location,
		Type:                j.Type,
		Description:         j.Description,
		Requirements:        nonNil(j.Requirements),
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
		Applications:        make([]applicationDoc, 0, len(j.Applications)),
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
	for _, a := range j.Applications {
		d.Applications = append(d.Applications, applicationDoc(a))
	}
	return d
}

func (d *jobDoc) model() *model.Job {
	j := &model.Job{
		ID:                  d.ID,
		Title:               d.Title,
		Company:             d.Company,
		Location:            d.Location,
		Type:                d.Type,
		Description:         d.Description,
		Requirements:        d.Requirements,
		SalaryMin:           d.SalaryMin,
		SalaryMax:           d.SalaryMax,
		Currency:            d.Currency,
		Experience:          d.Experience,
		ApplicationDeadline: d.ApplicationDeadline,
		ApplicationLink:     d.ApplicationLink,
		ContactEmail:        d.ContactEmail,
		PostedBy:            d.PostedBy,
		Status:              d.Status,
		Views:               d.Views,
		Applications:        make([]model.Application, 0, len(d.Applications)),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
	for _, a := range d.Applications {
		j.Applications = append(j.Applications, model.Application(a))
	}
	return j
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
