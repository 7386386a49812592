package postgres

import (
	"context"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

const eventCols = `id, title, description, type, mode, start_date, end_date, address, city,
	virtual_link, organizer_id, target_audience, max_attendees, registration_deadline,
	status, is_approved, created_at`

func scanEvent(row scanner) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Type, &e.Mode, &e.StartDate, &e.EndDate,
		&e.Address, &e.City, &e.VirtualLink, &e.OrganizerID, &e.TargetAudience, &e.MaxAttendees,
		&e.RegistrationDeadline, &e.Status, &e.IsApproved, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	e.Attendees = []model.Attendee{}
	return e, nil
}

func (s *Store) loadAttendees(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*model.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT event_id, user_id, status, registered_at
		 FROM event_attendees WHERE event_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eid string
			a   model.Attendee
		)
		if err := rows.Scan(&eid, &a.UserID, &a.Status, &a.RegisteredAt); err != nil {
			return err
		}
		e := byID[eid]
		e.Attendees = append(e.Attendees, a)
	}
	return rows.Err()
}

func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, title, description, type, mode, start_date, end_date, address, city,
		                     virtual_link, organizer_id, target_audience, max_attendees,
		                     registration_deadline, status, is_approved, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		e.ID, e.Title, e.Description, e.Type, e.Mode, e.StartDate, e.EndDate, e.Address, e.City,
		e.VirtualLink, e.OrganizerID, e.TargetAudience, e.MaxAttendees,
		e.RegistrationDeadline, e.Status, e.IsApproved, e.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventCols+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadAttendees(ctx, []*model.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, e *model.Event) error {
	return affected(s.pool.Exec(ctx,
		`UPDATE events
		 SET title=$2, description=$3, type=$4, mode=$5, start_date=$6, end_date=$7, address=$8,
		     city=$9, virtual_link=$10, target_audience=$11, max_attendees=$12,
		     registration_deadline=$13, status=$14, is_approved=$15
		 WHERE id=$1`,
		e.ID, e.Title, e.Description, e.Type, e.Mode, e.StartDate, e.EndDate, e.Address,
		e.City, e.VirtualLink, e.TargetAudience, e.MaxAttendees,
		e.RegistrationDeadline, e.Status, e.IsApproved,
	))
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id))
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter) ([]model.Event, int, error) {
	var w where
	if f.Approved != nil {
		w.add("is_approved = $%d", *f.Approved)
	}
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.Mode != "" {
		w.add("mode = $%d", f.Mode)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	total, err := w.count(ctx, s.pool, "events")
	if err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + eventCols + ` FROM events` + w.String() + ` ORDER BY start_date`
	q += w.page(f.Page)

	rows, err := s.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, 0, err
	}
	var ptrs []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		ptrs = append(ptrs, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.loadAttendees(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	out := make([]model.Event, len(ptrs))
	for i, e := range ptrs {
		out[i] = *e
	}
	return out, total, nil
}

func (s *Store) SetEventApproved(ctx context.Context, id string, approved bool) (*model.Event, error) {
	if err := affected(s.pool.Exec(ctx,
		`UPDATE events SET is_approved = $2 WHERE id = $1`, id, approved)); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

func (s *Store) FindAttendee(ctx context.Context, eventID, userID string) (*model.Attendee, error) {
	a := &model.Attendee{}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, status, registered_at FROM event_attendees
		 WHERE event_id = $1 AND user_id = $2`, eventID, userID,
	).Scan(&a.UserID, &a.Status, &a.RegisteredAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// UpsertAttendee keeps the original registration time and list position
// when the entry already exists.
func (s *Store) UpsertAttendee(ctx context.Context, eventID string, a model.Attendee) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO event_attendees (event_id, user_id, status, registered_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status`,
		eventID, a.UserID, a.Status, a.RegisteredAt,
	)
	return mapErr(err)
}

func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, eventID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}
