package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type QueryStatus string

const (
	StatusPending QueryStatus = "pending"
	StatusDone    QueryStatus = "done"
	StatusFailed  QueryStatus = "failed"
)

var (
	ErrQueryNotFound   = errors.New("query not found")
	ErrReportNotFound  = errors.New("report not found")
	// ErrQueryNotPending is returned when finishing a query that is unknown or already finished.
	ErrQueryNotPending = errors.New("query not pending")
)

// Query is a prompt submitted through the queue instead of the file handoff.
type Query struct {
	ID          uuid.UUID
	Model       string
	Prompt      string
	Status      QueryStatus
	Result      string
	Error       string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Report is a persisted verification of uploaded content.
type Report struct {
	ID        uuid.UUID
	Source    string
	Model     string
	Content   string
	Analyses  []string
	Result    string
	CreatedAt time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateQuery(ctx context.Context, model, prompt string) (Query, error)
	GetQuery(ctx context.Context, id uuid.UUID) (Query, error)
	CompleteQuery(ctx context.Context, id uuid.UUID, result string) error
	FailQuery(ctx context.Context, id uuid.UUID, reason string) error
	SaveReport(ctx context.Context, report Report) (Report, error)
	GetReport(ctx context.Context, id uuid.UUID) (Report, error)
}
