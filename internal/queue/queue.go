// Package queue carries query tasks from the gateway to workers with
// at-least-once delivery: a task whose handler fails is re-enqueued with
// backoff until its MaxAttempts are used up.
//
// The NATS implementation delivers a subscription's messages serially, and a
// redelivered task waits out its NotBefore inside that delivery. One backed-off
// retry therefore delays every later task on the same worker; run several
// workers in the queue group to keep throughput during retries.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rog-research/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	// TaskTypeQuery carries one prompt to be completed by a worker.
	TaskTypeQuery TaskType = "query"
)

// DefaultMaxAttempts applies when a task does not set MaxAttempts.
const DefaultMaxAttempts = 5

// Task represents a unit of work handed from the gateway to workers.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

// LastAttempt reports whether a failure of this delivery is final.
func (t Task) LastAttempt() bool {
	max := t.MaxAttempts
	if max == 0 {
		max = DefaultMaxAttempts
	}
	return t.Attempts+1 >= max
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
// Delivery is at-least-once: a handler error schedules a redelivery until
// the task runs out of attempts.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := q.Enqueue(ctx, task); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
