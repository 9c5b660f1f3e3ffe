package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps the gateway and workers from migrating concurrently.
	const lockID = 424242017

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS queries (
			id UUID PRIMARY KEY,
			model TEXT NOT NULL,
			prompt TEXT NOT NULL,
			status TEXT NOT NULL,
			result TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now(),
			completed_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id UUID PRIMARY KEY,
			source TEXT,
			model TEXT,
			content TEXT,
			analyses TEXT[],
			result TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateQuery(ctx context.Context, model, prompt string) (Query, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `INSERT INTO queries(id, model, prompt, status) VALUES($1,$2,$3,$4)`,
		id, model, prompt, StatusPending)
	if err != nil {
		return Query{}, err
	}
	return Query{ID: id, Model: model, Prompt: prompt, Status: StatusPending, CreatedAt: time.Now()}, nil
}

func (s *PostgresStore) GetQuery(ctx context.Context, id uuid.UUID) (Query, error) {
	var (
		q         Query
		status    string
		completed sql.NullTime
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT model, prompt, status, result, error, created_at, completed_at
		FROM queries WHERE id=$1`, id)
	if err := row.Scan(&q.Model, &q.Prompt, &status, &q.Result, &q.Error, &q.CreatedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Query{}, ErrQueryNotFound
		}
		return Query{}, fmt.Errorf("failed to get query %s: %w", id, err)
	}
	q.ID = id
	q.Status = QueryStatus(status)
	if completed.Valid {
		t := completed.Time
		q.CompletedAt = &t
	}
	return q, nil
}

// CompleteQuery and FailQuery only move a query out of pending, so a
// redelivered task cannot overwrite an earlier outcome.
func (s *PostgresStore) CompleteQuery(ctx context.Context, id uuid.UUID, result string) error {
	return s.finishQuery(ctx, id, StatusDone, result, "")
}

func (s *PostgresStore) FailQuery(ctx context.Context, id uuid.UUID, reason string) error {
	return s.finishQuery(ctx, id, StatusFailed, "", reason)
}

func (s *PostgresStore) finishQuery(ctx context.Context, id uuid.UUID, status QueryStatus, result, reason string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queries SET status=$1, result=$2, error=$3, completed_at=now()
		WHERE id=$4 AND status=$5`,
		status, result, reason, id, StatusPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQueryNotPending
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report Report) (Report, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Analyses == nil {
		report.Analyses = []string{}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reports(id, source, model, content, analyses, result)
		VALUES($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		report.ID, report.Source, report.Model, report.Content, pq.Array(report.Analyses), report.Result,
	).Scan(&report.CreatedAt)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	var r Report
	var analyses []string
	row := s.db.QueryRowContext(ctx, `
		SELECT source, model, content, analyses, result, created_at
		FROM reports WHERE id=$1`, id)
	if err := row.Scan(&r.Source, &r.Model, &r.Content, pq.Array(&analyses), &r.Result, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	r.ID = id
	r.Analyses = analyses
	return r, nil
}
