package postgres

import (
	"context"
	"time"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

const userCols = `id, email, password_hash, first_name, last_name, role, graduation_year,
	department, course, current_company, designation, city, country, linkedin, bio,
	skills, is_mentor, mentor_expertise, mentor_experience, mentor_availability,
	max_mentees, is_verified, is_suspended, connections, last_login, created_at, updated_at`

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var mp model.MentorProfile
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.GraduationYear,
		&u.Department, &u.Course, &u.CurrentCompany, &u.Designation, &u.City, &u.Country, &u.LinkedIn, &u.Bio,
		&u.Skills, &u.IsMentor, &mp.Expertise, &mp.Experience, &mp.Availability,
		&mp.MaxMentees, &u.IsVerified, &u.IsSuspended, &u.Connections, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	if u.IsMentor {
		u.Mentor = &mp
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, role, graduation_year,
		                    department, course, current_company, designation, city, country,
		                    linkedin, bio, skills, is_verified)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.GraduationYear,
		u.Department, u.Course, u.CurrentCompany, u.Designation, u.City, u.Country,
		u.LinkedIn, u.Bio, strs(u.Skills), u.IsVerified,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd model.ProfileUpdate) (*model.User, error) {
	// nil fields encode as NULL and COALESCE keeps the stored value
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET
		    first_name      = COALESCE($2, first_name),
		    last_name       = COALESCE($3, last_name),
		    graduation_year = COALESCE($4, graduation_year),
		    department      = COALESCE($5, department),
		    course          = COALESCE($6, course),
		    current_company = COALESCE($7, current_company),
		    designation     = COALESCE($8, designation),
		    city            = COALESCE($9, city),
		    country         = COALESCE($10, country),
		    linkedin        = COALESCE($11, linkedin),
		    bio             = COALESCE($12, bio),
		    skills          = COALESCE($13, skills),
		    updated_at      = NOW()
		 WHERE id = $1
		 RETURNING `+userCols,
		id, upd.FirstName, upd.LastName, upd.GraduationYear, upd.Department, upd.Course,
		upd.CurrentCompany, upd.Designation, upd.City, upd.Country, upd.LinkedIn, upd.Bio, upd.Skills,
	))
}

func (s *Store) SetMentorProfile(ctx context.Context, id string, p model.MentorProfile) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE users SET is_mentor = TRUE, mentor_expertise = $2, mentor_experience = $3,
		        mentor_availability = $4, max_mentees = $5, updated_at = NOW()
		 WHERE id = $1`,
		id, strs(p.Expertise), p.Experience, p.Availability, p.MaxMentees,
	))
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET is_verified = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userCols,
		id, verified))
}

func (s *Store) SetSuspended(ctx context.Context, id string, suspended bool) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET is_suspended = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userCols,
		id, suspended))
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return affected(s.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at))
}

func (s *Store) AddConnection(ctx context.Context, userID, otherID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var n int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE id = $1 OR id = $2`, userID, otherID,
	).Scan(&n); err != nil {
		return err
	}
	if n != 2 {
		return store.ErrNotFound
	}

	// link both ways, skipping sides that are already linked
	for _, pair := range [][2]string{{userID, otherID}, {otherID, userID}} {
		_, err = tx.Exec(ctx,
			`UPDATE users SET connections = array_append(connections, $2)
			 WHERE id = $1 AND NOT ($2 = ANY(connections))`,
			pair[0], pair[1],
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int, error) {
	var w where
	if f.Role != "" {
		w.add("role = $%d", f.Role)
	}
	if f.Verified != nil {
		w.add("is_verified = $%d", *f.Verified)
	}
	if f.Department != "" {
		w.add("department = $%d", f.Department)
	}
	if f.Batch != 0 {
		w.add("graduation_year = $%d", f.Batch)
	}
	if f.City != "" {
		w.add("city ILIKE $%d", like(f.City))
	}
	if f.Company != "" {
		w.add("current_company ILIKE $%d", like(f.Company))
	}

	total, err := w.count(ctx, s.pool, "users")
	if err != nil {
		return nil, 0, err
	}
	order := " ORDER BY created_at DESC"
	if f.ByGraduation {
		order = " ORDER BY graduation_year DESC, created_at DESC"
	}
	q := `SELECT ` + userCols + ` FROM users` + w.String() + order
	q += w.page(f.Page)
	users, err := s.queryUsers(ctx, q, w.args...)
	return users, total, err
}

func (s *Store) ListMentors(ctx context.Context, f store.MentorFilter) ([]model.User, int, error) {
	var w where
	w.parts = append(w.parts, "is_mentor", "is_verified")
	if f.Expertise != "" {
		w.add("$%d = ANY(mentor_expertise)", f.Expertise)
	}

	total, err := w.count(ctx, s.pool, "users")
	if err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + userCols + ` FROM users` + w.String() + ` ORDER BY created_at`
	q += w.page(f.Page)
	users, err := s.queryUsers(ctx, q, w.args...)
	return users, total, err
}

func (s *Store) SearchUsers(ctx context.Context, q string, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryUsers(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE is_verified
		   AND (first_name ILIKE $1 OR last_name ILIKE $1
		        OR current_company ILIKE $1 OR designation ILIKE $1)
		 ORDER BY created_at
		 LIMIT $2`, like(q), limit,
	)
}
