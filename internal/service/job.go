package service

import (
	"context"
	"errors"
	"time"

	"alumni-portal/internal/access"
	"alumni-portal/internal/apperr"
	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

type JobInput struct {
	Title               string     `json:"title" validate:"required"`
	Company             string     `json:"company" validate:"required"`
	Location            string     `json:"location" validate:"required"`
	Type                string     `json:"type" validate:"required,oneof=full-time part-time internship remote contract"`
	Description         string     `json:"description" validate:"required"`
	Requirements        []string   `json:"requirements"`
	SalaryMin           *int       `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax           *int       `json:"salaryMax" validate:"omitempty,gte=0"`
	Currency            string     `json:"currency" validate:"omitempty,len=3"`
	Experience          string     `json:"experience" validate:"omitempty,oneof=fresher '0-2 years' '2-5 years' '5-10 years' '10+ years'"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	ApplicationLink     string     `json:"applicationLink" validate:"omitempty,url"`
	ContactEmail        string     `json:"contactEmail" validate:"omitempty,email"`
}

func (in JobInput) apply(j *model.Job) {
	j.Title = in.Title
	j.Company = in.Company
	j.Location = in.Location
	j.Type = in.Type
	j.Description = in.Description
	j.Requirements = in.Requirements
	j.SalaryMin = in.SalaryMin
	j.SalaryMax = in.SalaryMax
	j.Currency = in.Currency
	if j.Currency == "" {
		j.Currency = "USD"
	}
	j.Experience = in.Experience
	j.ApplicationDeadline = in.ApplicationDeadline
	j.ApplicationLink = in.ApplicationLink
	j.ContactEmail = in.ContactEmail
}

// CreateJob posts a job. Students may not post; admin posts go live at
// once, the rest wait for approval.
func (s *Service) CreateJob(ctx context.Context, actor access.Actor, in JobInput) (*model.Job, error) {
	if err := access.Check(actor, access.PostJob, access.Resource{}); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMax < *in.SalaryMin {
		return nil, apperr.Validation("salaryMax must not be below salaryMin")
	}
	j := &model.Job{
		ID:           s.newID(),
		PostedBy:     actor.UserID,
		Status:       model.JobPending,
		Applications: []model.Application{},
	}
	if actor.IsAdmin() {
		j.Status = model.JobActive
	}
	in.apply(j)
	if err := s.store.CreateJob(ctx, j); err != nil {
		return nil, apperr.Unavailable(err)
	}
	return j, nil
}

// GetJob returns a job and counts the view.
func (s *Service) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if err := s.store.IncrementViews(ctx, id); err != nil {
		return nil, storeErr(err, "job")
	}
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	return j, nil
}

type JobQuery struct {
	Type     string
	Location string
	Company  string
	store.Page
}

// ListJobs returns active jobs, newest first.
func (s *Service) ListJobs(ctx context.Context, q JobQuery) (Paged[model.Job], error) {
	p := page(q.Page, 10)
	jobs, total, err := s.store.ListJobs(ctx, store.JobFilter{
		Status:   model.JobActive,
		Type:     q.Type,
		Location: q.Location,
		Company:  q.Company,
		Page:     p,
	})
	if err != nil {
		return Paged[model.Job]{}, apperr.Unavailable(err)
	}
	return paged(jobs, total, p), nil
}

// JobPatch carries the fields an update may change. Nil fields keep their
// stored value.
type JobPatch struct {
	Title               *string    `json:"title" validate:"omitnil,min=1"`
	Company             *string    `json:"company" validate:"omitnil,min=1"`
	Location            *string    `json:"location" validate:"omitnil,min=1"`
	Type                *string    `json:"type" validate:"omitnil,oneof=full-time part-time internship remote contract"`
	Description         *string    `json:"description" validate:"omitnil,min=1"`
	Requirements        []string   `json:"requirements"`
	SalaryMin           *int       `json:"salaryMin" validate:"omitnil,gte=0"`
	SalaryMax           *int       `json:"salaryMax" validate:"omitnil,gte=0"`
	Currency            *string    `json:"currency" validate:"omitnil,len=3"`
	Experience          *string    `json:"experience" validate:"omitnil,oneof=fresher '0-2 years' '2-5 years' '5-10 years' '10+ years'"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	ApplicationLink     *string    `json:"applicationLink" validate:"omitempty,url"`
	ContactEmail        *string    `json:"contactEmail" validate:"omitempty,email"`
}

func (p JobPatch) apply(j *model.Job) {
	set(&j.Title, p.Title)
	set(&j.Company, p.Company)
	set(&j.Location, p.Location)
	set(&j.Type, p.Type)
	set(&j.Description, p.Description)
	set(&j.Currency, p.Currency)
	set(&j.Experience, p.Experience)
	set(&j.ApplicationLink, p.ApplicationLink)
	set(&j.ContactEmail, p.ContactEmail)
	if p.Requirements != nil {
		j.Requirements = p.Requirements
	}
	if p.SalaryMin != nil {
		v := *p.SalaryMin
		j.SalaryMin = &v
	}
	if p.SalaryMax != nil {
		v := *p.SalaryMax
		j.SalaryMax = &v
	}
	if p.ApplicationDeadline != nil {
		d := *p.ApplicationDeadline
		j.ApplicationDeadline = &d
	}
}

// UpdateJob applies the fields present in p. Poster, views and
// applications are kept.
func (s *Service) UpdateJob(ctx context.Context, actor access.Actor, id string, p JobPatch) (*model.Job, error) {
	if err := check(p); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, "job", id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	if err := access.Check(actor, access.ManageJob, access.Resource{OwnerID: j.PostedBy}); err != nil {
		return nil, err
	}
	p.apply(j)
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMax < *j.SalaryMin {
		return nil, apperr.Validation("salaryMax must not be below salaryMin")
	}
	if err := s.store.UpdateJob(ctx, j); err != nil {
		return nil, storeErr(err, "job")
	}
	j.UpdatedAt = s.now()
	return j, nil
}

func (s *Service) DeleteJob(ctx context.Context, actor access.Actor, id string) error {
	unlock, err := s.lock(ctx, "job", id)
	if err != nil {
		return err
	}
	defer unlock()

	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return storeErr(err, "job")
	}
	if err := access.Check(actor, access.ManageJob, access.Resource{OwnerID: j.PostedBy}); err != nil {
		return err
	}
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return storeErr(err, "job")
	}
	return nil
}

// ApplyJob records one application per applicant.
func (s *Service) ApplyJob(ctx context.Context, actor access.Actor, id string) error {
	unlock, err := s.lock(ctx, "job", id)
	if err != nil {
		return err
	}
	defer unlock()

	app := model.Application{ApplicantID: actor.UserID, AppliedAt: s.now(), Status: "applied"}
	err = s.store.AddApplication(ctx, id, app)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("already applied to this job")
	default:
		return storeErr(err, "job")
	}
}

// SetJobApproval activates or rejects a job. Admin only.
func (s *Service) SetJobApproval(ctx context.Context, actor access.Actor, id string, approve bool) (*model.Job, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, "job", id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st := model.JobRejected
	if approve {
		st = model.JobActive
	}
	j, err := s.store.SetJobStatus(ctx, id, st)
	if err != nil {
		return nil, storeErr(err, "job")
	}
	return j, nil
}

func (s *Service) PendingJobs(ctx context.Context, actor access.Actor) ([]model.Job, error) {
	if err := access.Check(actor, access.Moderate, access.Resource{}); err != nil {
		return nil, err
	}
	jobs, _, err := s.store.ListJobs(ctx, store.JobFilter{Status: model.JobPending})
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return jobs, nil
}
