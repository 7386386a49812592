// Package memstore is an in-process Store used by tests and by
// STORE_DRIVER=memory. Records are copied in and out so callers never
// share memory with the store.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]*model.User
	mentorships map[string]*model.Mentorship
	events      map[string]*model.Event
	jobs        map[string]*model.Job
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       make(map[string]*model.User),
		mentorships: make(map[string]*model.Mentorship),
		events:      make(map[string]*model.Event),
		jobs:        make(map[string]*model.Job),
	}
}

func (s *Store) Close() error { return nil }

func contains(field, sub string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}

func paginate[T any](all []T, p store.Page) []T {
	off := p.Offset()
	if off >= len(all) {
		return []T{}
	}
	all = all[off:]
	if p.Limit > 0 && len(all) > p.Limit {
		all = all[:p.Limit]
	}
	return all
}

// ----- users -----

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Skills = slices.Clone(u.Skills)
	c.Connections = slices.Clone(u.Connections)
	if u.Mentor != nil {
		m := *u.Mentor
		m.Expertise = slices.Clone(u.Mentor.Expertise)
		if u.Mentor.MaxMentees != nil {
			n := *u.Mentor.MaxMentees
			m.MaxMentees = &n
		}
		c.Mentor = &m
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.users {
		if strings.EqualFold(o.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = cloneUser(u)
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateProfile(_ context.Context, id string, upd model.ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.FirstName, upd.FirstName)
	set(&u.LastName, upd.LastName)
	set(&u.Department, upd.Department)
	set(&u.Course, upd.Course)
	set(&u.CurrentCompany, upd.CurrentCompany)
	set(&u.Designation, upd.Designation)
	set(&u.City, upd.City)
	set(&u.Country, upd.Country)
	set(&u.LinkedIn, upd.LinkedIn)
	set(&u.Bio, upd.Bio)
	if upd.GraduationYear != nil {
		u.GraduationYear = *upd.GraduationYear
	}
	if upd.Skills != nil {
		u.Skills = slices.Clone(upd.Skills)
	}
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

func (s *Store) SetMentorProfile(_ context.Context, id string, p model.MentorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsMentor = true
	u.Mentor = cloneUser(&model.User{Mentor: &p}).Mentor
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) setFlag(id string, fn func(*model.User)) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

func (s *Store) SetVerified(_ context.Context, id string, verified bool) (*model.User, error) {
	return s.setFlag(id, func(u *model.User) { u.IsVerified = verified })
}

func (s *Store) SetSuspended(_ context.Context, id string, suspended bool) (*model.User, error) {
	return s.setFlag(id, func(u *model.User) { u.IsSuspended = suspended })
}

func (s *Store) TouchLogin(_ context.Context, id string, at time.Time) error {
	_, err := s.setFlag(id, func(u *model.User) { u.LastLogin = &at })
	return err
}

func (s *Store) AddConnection(_ context.Context, userID, otherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	b, ok := s.users[otherID]
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(a.Connections, otherID) {
		a.Connections = append(a.Connections, otherID)
	}
	if !slices.Contains(b.Connections, userID) {
		b.Connections = append(b.Connections, userID)
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context, f store.UserFilter) ([]model.User, int, error) {
	s.mu.RLock()
	var out []model.User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Verified != nil && u.IsVerified != *f.Verified {
			continue
		}
		if f.Department != "" && u.Department != f.Department {
			continue
		}
		if f.Batch != 0 && u.GraduationYear != f.Batch {
			continue
		}
		if f.City != "" && !contains(u.City, f.City) {
			continue
		}
		if f.Company != "" && !contains(u.CurrentCompany, f.Company) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if f.ByGraduation {
			return out[i].GraduationYear > out[j].GraduationYear
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, f.Page), len(out), nil
}

func (s *Store) ListMentors(_ context.Context, f store.MentorFilter) ([]model.User, int, error) {
	s.mu.RLock()
	var out []model.User
	for _, u := range s.users {
		if !u.IsMentor || !u.IsVerified {
			continue
		}
		if f.Expertise != "" && (u.Mentor == nil || !slices.Contains(u.Mentor.Expertise, f.Expertise)) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, f.Page), len(out), nil
}

func (s *Store) SearchUsers(_ context.Context, q string, limit int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.User
	for _, u := range s.users {
		if !u.IsVerified {
			continue
		}
		if contains(u.FirstName, q) || contains(u.LastName, q) ||
			contains(u.CurrentCompany, q) || contains(u.Designation, q) {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ----- mentorships -----

func cloneMentorship(m *model.Mentorship) *model.Mentorship {
	c := *m
	c.Sessions = make([]model.Session, len(m.Sessions))
	for i, sess := range m.Sessions {
		c.Sessions[i] = sess
		if sess.Feedback != nil {
			fb := *sess.Feedback
			c.Sessions[i].Feedback = &fb
		}
	}
	if m.StartDate != nil {
		t := *m.StartDate
		c.StartDate = &t
	}
	if m.EndDate != nil {
		t := *m.EndDate
		c.EndDate = &t
	}
	return &c
}

func (s *Store) CreateMentorship(_ context.Context, m *model.Mentorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.mentorships[m.ID] = cloneMentorship(m)
	return nil
}

func (s *Store) GetMentorship(_ context.Context, id string) (*model.Mentorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mentorships[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneMentorship(m), nil
}

func (s *Store) FindActiveBetween(_ context.Context, mentorID, menteeID string) (*model.Mentorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mentorships {
		if m.MentorID == mentorID && m.MenteeID == menteeID && m.Status.Active() {
			return cloneMentorship(m), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CountAccepted(_ context.Context, mentorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.mentorships {
		if m.MentorID == mentorID && m.Status == model.MentorshipAccepted {
			n++
		}
	}
	return n, nil
}

func (s *Store) SetMentorshipStatus(_ context.Context, id string, st model.MentorshipStatus, startDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentorships[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Status = st
	if startDate != nil {
		t := *startDate
		m.StartDate = &t
	}
	return nil
}

func (s *Store) AppendSession(_ context.Context, mentorshipID string, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentorships[mentorshipID]
	if !ok {
		return store.ErrNotFound
	}
	sess.Feedback = nil
	m.Sessions = append(m.Sessions, sess)
	return nil
}

func (s *Store) SetSessionFeedback(_ context.Context, mentorshipID, sessionID string, f model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentorships[mentorshipID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range m.Sessions {
		if m.Sessions[i].ID == sessionID {
			fb := f
			m.Sessions[i].Feedback = &fb
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListMentorships(_ context.Context, f store.MentorshipFilter) ([]model.Mentorship, error) {
	s.mu.RLock()
	var out []model.Mentorship
	for _, m := range s.mentorships {
		if f.MentorID != "" && m.MentorID != f.MentorID {
			continue
		}
		if f.ParticipantID != "" && m.MentorID != f.ParticipantID && m.MenteeID != f.ParticipantID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, m.Status) {
			continue
		}
		out = append(out, *cloneMentorship(m))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ----- events -----

func cloneEvent(e *model.Event) *model.Event {
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	if e.MaxAttendees != nil {
		n := *e.MaxAttendees
		c.MaxAttendees = &n
	}
	if e.RegistrationDeadline != nil {
		t := *e.RegistrationDeadline
		c.RegistrationDeadline = &t
	}
	return &c
}

func (s *Store) CreateEvent(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.events[e.ID] = cloneEvent(e)
	return nil
}

func (s *Store) GetEvent(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (s *Store) UpdateEvent(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[e.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := cloneEvent(e)
	next.OrganizerID = cur.OrganizerID
	next.Attendees = cur.Attendees
	next.CreatedAt = cur.CreatedAt
	s.events[e.ID] = next
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) ListEvents(_ context.Context, f store.EventFilter) ([]model.Event, int, error) {
	s.mu.RLock()
	var out []model.Event
	for _, e := range s.events {
		if f.Approved != nil && e.IsApproved != *f.Approved {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Mode != "" && e.Mode != f.Mode {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, *cloneEvent(e))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return paginate(out, f.Page), len(out), nil
}

func (s *Store) SetEventApproved(_ context.Context, id string, approved bool) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	e.IsApproved = approved
	return cloneEvent(e), nil
}

func (s *Store) FindAttendee(_ context.Context, eventID, userID string) (*model.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, a := range e.Attendees {
		if a.UserID == userID {
			att := a
			return &att, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertAttendee(_ context.Context, eventID string, a model.Attendee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range e.Attendees {
		if e.Attendees[i].UserID == a.UserID {
			e.Attendees[i].Status = a.Status
			return nil
		}
	}
	e.Attendees = append(e.Attendees, a)
	return nil
}

func (s *Store) RemoveAttendee(_ context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	e.Attendees = slices.DeleteFunc(e.Attendees, func(a model.Attendee) bool { return a.UserID == userID })
	return nil
}

// ----- jobs -----

func cloneJob(j *model.Job) *model.Job {
	c := *j
	c.Requirements = slices.Clone(j.Requirements)
	c.Applications = slices.Clone(j.Applications)
	if j.SalaryMin != nil {
		n := *j.SalaryMin
		c.SalaryMin = &n
	}
	if j.SalaryMax != nil {
		n := *j.SalaryMax
		c.SalaryMax = &n
	}
	if j.ApplicationDeadline != nil {
		t := *j.ApplicationDeadline
		c.ApplicationDeadline = &t
	}
	return &c
}

func (s *Store) CreateJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	s.jobs[j.ID] = cloneJob(j)
	return nil
}

func (s *Store) GetJob(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneJob(j), nil
}

func (s *Store) UpdateJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[j.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := cloneJob(j)
	next.PostedBy = cur.PostedBy
	next.Views = cur.Views
	next.Applications = cur.Applications
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now()
	s.jobs[j.ID] = next
	return nil
}

func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *Store) ListJobs(_ context.Context, f store.JobFilter) ([]model.Job, int, error) {
	s.mu.RLock()
	var out []model.Job
	for _, j := range s.jobs {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Type != "" && j.Type != f.Type {
			continue
		}
		if f.Location != "" && !contains(j.Location, f.Location) {
			continue
		}
		if f.Company != "" && !contains(j.Company, f.Company) {
			continue
		}
		out = append(out, *cloneJob(j))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return paginate(out, f.Page), len(out), nil
}

func (s *Store) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	j.Views++
	return nil
}

func (s *Store) SetJobStatus(_ context.Context, id string, st model.JobStatus) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	j.Status = st
	j.UpdatedAt = time.Now()
	return cloneJob(j), nil
}

func (s *Store) AddApplication(_ context.Context, jobID string, a model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	for _, o := range j.Applications {
		if o.ApplicantID == a.ApplicantID {
			return store.ErrDuplicate
		}
	}
	j.Applications = append(j.Applications, a)
	return nil
}

// ----- stats -----

func (s *Store) Stats(_ context.Context) (*model.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &model.Stats{
		TotalUsers:  len(s.users),
		TotalJobs:   len(s.jobs),
		TotalEvents: len(s.events),
	}
	for _, u := range s.users {
		switch u.Role {
		case model.RoleAlumni:
			st.TotalAlumni++
			if u.IsVerified {
				st.VerifiedAlumni++
			}
		case model.RoleStudent:
			st.TotalStudents++
		}
		if u.IsMentor {
			st.TotalMentors++
		}
	}
	for _, j := range s.jobs {
		if j.Status == model.JobActive {
			st.ActiveJobs++
		}
	}
	for _, e := range s.events {
		if e.Status == model.EventUpcoming {
			st.UpcomingEvents++
		}
	}
	for _, m := range s.mentorships {
		if m.Status == model.MentorshipAccepted {
			st.ActiveMentorships++
		}
	}
	return st, nil
}
