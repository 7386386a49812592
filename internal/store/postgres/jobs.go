package postgres

import (
	"context"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

const jobCols = `id, title, company, location, type, description, requirements, salary_min,
	salary_max, currency, experience, application_deadline, application_link, contact_email,
	posted_by, status, views, created_at, updated_at`

func scanJob(row scanner) (*model.Job, error) {
	j := &model.Job{}
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Description,
		&j.Requirements, &j.SalaryMin, &j.SalaryMax, &j.Currency, &j.Experience,
		&j.ApplicationDeadline, &j.ApplicationLink, &j.ContactEmail, &j.PostedBy, &j.Status,
		&j.Views, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	j.Applications = []model.Application{}
	return j, nil
}

func (s *Store) loadApplications(ctx context.Context, jobs []*model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	byID := make(map[string]*model.Job, len(jobs))
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
		ids = append(ids, j.ID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT job_id, applicant_id, applied_at, status
		 FROM job_applications WHERE job_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jid string
			a   model.Application
		)
		if err := rows.Scan(&jid, &a.ApplicantID, &a.AppliedAt, &a.Status); err != nil {
			return err
		}
		j := byID[jid]
		j.Applications = append(j.Applications, a)
	}
	return rows.Err()
}

func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, company, location, type, description, requirements,
		                   salary_min, salary_max, currency, experience, application_deadline,
		                   application_link, contact_email, posted_by, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 RETURNING created_at, updated_at`,
		j.ID, j.Title, j.Company, j.Location, j.Type, j.Description, strs(j.Requirements),
		j.SalaryMin, j.SalaryMax, j.Currency, j.Experience, j.ApplicationDeadline,
		j.ApplicationLink, j.ContactEmail, j.PostedBy, j.Status,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	return mapErr(err)
}

func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx, `SELECT `+jobCols+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadApplications(ctx, []*model.Job{j}); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) UpdateJob(ctx context.Context, j *model.Job) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE jobs
		 SET title=$2, company=$3, location=$4, type=$5, description=$6, requirements=$7,
		     salary_min=$8, salary_max=$9, currency=$10, experience=$11,
		     application_deadline=$12, application_link=$13, contact_email=$14, status=$15,
		     updated_at=NOW()
		 WHERE id=$1`,
		j.ID, j.Title, j.Company, j.Location, j.Type, j.Description, strs(j.Requirements),
		j.SalaryMin, j.SalaryMax, j.Currency, j.Experience,
		j.ApplicationDeadline, j.ApplicationLink, j.ContactEmail, j.Status,
	))
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id))
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]model.Job, int, error) {
	var w where
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.Location != "" {
		w.add("location ILIKE $%d", like(f.Location))
	}
	if f.Company != "" {
		w.add("company ILIKE $%d", like(f.Company))
	}

	total, err := w.count(ctx, s.pool, "jobs")
	if err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + jobCols + ` FROM jobs` + w.String() + ` ORDER BY created_at DESC`
	q += w.page(f.Page)

	rows, err := s.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	var ptrs []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		ptrs = append(ptrs, j)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.loadApplications(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	out := make([]model.Job, len(ptrs))
	for i, j := range ptrs {
		out[i] = *j
	}
	return out, total, nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return affected(s.pool.Exec(ctx, `UPDATE jobs SET views = views + 1 WHERE id = $1`, id))
}

func (s *Store) SetJobStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	if err := affected(s.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)); err != nil {
		return nil, err
	}
	return s.GetJob(ctx, id)
}

// AddApplication relies on the (job_id, applicant_id) key for dedup.
func (s *Store) AddApplication(ctx context.Context, jobID string, a model.Application) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_applications (job_id, applicant_id, applied_at, status)
		 VALUES ($1,$2,$3,$4)`,
		jobID, a.ApplicantID, a.AppliedAt, a.Status,
	)
	return mapErr(err)
}
