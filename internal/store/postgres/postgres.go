// Package postgres is the pgx-backed Store. Schema changes live in
// migrations/ and are applied with goose on startup.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"alumni-portal/internal/model"
	"alumni-portal/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects, pings and migrates.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// Migrate applies the embedded migrations through a database/sql handle
// that shares the pool's connections.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// mapErr turns driver errors into the store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// affected reports ErrNotFound when an update or delete matched no row.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// where collects numbered predicates for dynamic list queries.
type where struct {
	parts []string
	args  []any
}

// add appends a predicate; expr holds %d (or %[1]d, repeated) for the
// placeholder number.
func (w *where) add(expr string, v any) {
	w.args = append(w.args, v)
	w.parts = append(w.parts, fmt.Sprintf(expr, len(w.args)))
}

func (w *where) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// page appends LIMIT/OFFSET for p; a zero limit returns everything.
func (w *where) page(p store.Page) string {
	if p.Limit <= 0 {
		return ""
	}
	w.args = append(w.args, p.Limit, p.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func (w *where) count(ctx context.Context, pool *pgxpool.Pool, table string) (int, error) {
	var n int
	err := pool.QueryRow(ctx, "SELECT count(*) FROM "+table+w.String(), w.args...).Scan(&n)
	return n, err
}

func like(s string) string {
	return "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s) + "%"
}

func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{}
	err := s.pool.QueryRow(ctx, `SELECT
		(SELECT count(*) FROM users),
		(SELECT count(*) FROM users WHERE role = 'alumni'),
		(SELECT count(*) FROM users WHERE role = 'student'),
		(SELECT count(*) FROM users WHERE role = 'alumni' AND is_verified),
		(SELECT count(*) FROM jobs),
		(SELECT count(*) FROM jobs WHERE status = 'active'),
		(SELECT count(*) FROM events),
		(SELECT count(*) FROM events WHERE status = 'upcoming'),
		(SELECT count(*) FROM users WHERE is_mentor),
		(SELECT count(*) FROM mentorships WHERE status = 'accepted')`,
	).Scan(&st.TotalUsers, &st.TotalAlumni, &st.TotalStudents, &st.VerifiedAlumni,
		&st.TotalJobs, &st.ActiveJobs, &st.TotalEvents, &st.UpcomingEvents,
		&st.TotalMentors, &st.ActiveMentorships)
	if err != nil {
		return nil, err
	}
	return st, nil
}
