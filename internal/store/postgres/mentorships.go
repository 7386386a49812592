package postgres

import (
	"context"
	"time"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

const mentorshipCols = `id, mentor_id, mentee_id, status, domain, goals, preferred_mode,
	request_message, start_date, end_date, created_at`

func scanMentorship(row scanner) (*model.Mentorship, error) {
	m := &model.Mentorship{}
	err := row.Scan(&m.ID, &m.MentorID, &m.MenteeID, &m.Status, &m.Domain, &m.Goals,
		&m.PreferredMode, &m.RequestMessage, &m.StartDate, &m.EndDate, &m.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	m.Sessions = []model.Session{}
	return m, nil
}

// loadSessions fills Sessions for every mentorship in ms, in scheduling order.
func (s *Store) loadSessions(ctx context.Context, ms []*model.Mentorship) error {
	if len(ms) == 0 {
		return nil
	}
	byID := make(map[string]*model.Mentorship, len(ms))
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT mentorship_id, id, date, duration, mode, notes, feedback_rating, feedback_comment
		 FROM mentorship_sessions
		 WHERE mentorship_id = ANY($1)
		 ORDER BY seq`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mid     string
			sess    model.Session
			rating  *int
			comment *string
		)
		if err := rows.Scan(&mid, &sess.ID, &sess.Date, &sess.Duration, &sess.Mode, &sess.Notes, &rating, &comment); err != nil {
			return err
		}
		if rating != nil {
			sess.Feedback = &model.Feedback{Rating: *rating}
			if comment != nil {
				sess.Feedback.Comment = *comment
			}
		}
		m := byID[mid]
		m.Sessions = append(m.Sessions, sess)
	}
	return rows.Err()
}

func (s *Store) CreateMentorship(ctx context.Context, m *model.Mentorship) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mentorships (id, mentor_id, mentee_id, status, domain, goals, preferred_mode,
		                          request_message, start_date, end_date, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.MentorID, m.MenteeID, m.Status, m.Domain, m.Goals, m.PreferredMode,
		m.RequestMessage, m.StartDate, m.EndDate, m.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetMentorship(ctx context.Context, id string) (*model.Mentorship, error) {
	m, err := scanMentorship(s.pool.QueryRow(ctx,
		`SELECT `+mentorshipCols+` FROM mentorships WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadSessions(ctx, []*model.Mentorship{m}); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) FindActiveBetween(ctx context.Context, mentorID, menteeID string) (*model.Mentorship, error) {
	return scanMentorship(s.pool.QueryRow(ctx,
		`SELECT `+mentorshipCols+` FROM mentorships
		 WHERE mentor_id = $1 AND mentee_id = $2 AND status IN ('pending', 'accepted')
		 LIMIT 1`, mentorID, menteeID))
}

func (s *Store) CountAccepted(ctx context.Context, mentorID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM mentorships WHERE mentor_id = $1 AND status = 'accepted'`, mentorID,
	).Scan(&n)
	return n, err
}

func (s *Store) SetMentorshipStatus(ctx context.Context, id string, status model.MentorshipStatus, startDate *time.Time) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE mentorships SET status = $2, start_date = COALESCE($3, start_date) WHERE id = $1`,
		id, status, startDate,
	))
}

func (s *Store) AppendSession(ctx context.Context, mentorshipID string, sess model.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO mentorship_sessions (id, mentorship_id, date, duration, mode, notes)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		sess.ID, mentorshipID, sess.Date, sess.Duration, sess.Mode, sess.Notes,
	)
	return mapErr(err)
}

func (s *Store) SetSessionFeedback(ctx context.Context, mentorshipID, sessionID string, f model.Feedback) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE mentorship_sessions SET feedback_rating = $3, feedback_comment = $4
		 WHERE mentorship_id = $1 AND id = $2`,
		mentorshipID, sessionID, f.Rating, f.Comment,
	))
}

func (s *Store) ListMentorships(ctx context.Context, f store.MentorshipFilter) ([]model.Mentorship, error) {
	var w where
	if f.MentorID != "" {
		w.add("mentor_id = $%d", f.MentorID)
	}
	if f.ParticipantID != "" {
		w.add("(mentor_id = $%[1]d OR mentee_id = $%[1]d)", f.ParticipantID)
	}
	if len(f.Statuses) > 0 {
		sts := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			sts[i] = string(st)
		}
		w.add("status = ANY($%d)", sts)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+mentorshipCols+` FROM mentorships`+w.String()+` ORDER BY created_at`, w.args...)
	if err != nil {
		return nil, err
	}
	var ptrs []*model.Mentorship
	for rows.Next() {
		m, err := scanMentorship(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadSessions(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]model.Mentorship, len(ptrs))
	for i, m := range ptrs {
		out[i] = *m
	}
	return out, nil
}
