package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rog-research/internal/app"
	"rog-research/internal/httputil"
	"rog-research/internal/inference"
	"rog-research/internal/queue"
	"rog-research/internal/store"
)

type queryTaskPayload struct {
	QueryID uuid.UUID `json:"query_id"`
}

func main() {
	deps, err := app.BuildWorker()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("query worker starting", "model", deps.Config.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeQuery, func(ctx context.Context, task queue.Task) error {
			return handleQuery(ctx, deps, task)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps, "worker")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("worker stopped", "err", err)
	}
}

// handleQuery answers one queued query. A returned error asks the queue to
// redeliver; anything that would fail again the same way is recorded and dropped.
func handleQuery(ctx context.Context, deps app.Deps, task queue.Task) error {
	var payload queryTaskPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		deps.Log.Error("dropping task with invalid payload", "task_id", task.ID, "err", err)
		return nil
	}
	log := deps.Log.With("query_id", payload.QueryID, "attempt", task.Attempts+1)

	q, err := deps.Store.GetQuery(ctx, payload.QueryID)
	if errors.Is(err, store.ErrQueryNotFound) {
		log.Warn("dropping task for unknown query")
		return nil
	}
	if err != nil {
		return err
	}
	if q.Status != store.StatusPending {
		log.Debug("query already finished", "status", q.Status)
		return nil
	}

	res, err := deps.Inference.Complete(ctx, q.Model, q.Prompt)
	switch {
	case errors.Is(err, inference.ErrMalformedResponse):
		log.Warn("model returned a malformed response", "err", err)
		return finish(deps.Store.FailQuery(context.WithoutCancel(ctx), q.ID, err.Error()))
	case err != nil && task.LastAttempt():
		log.Error("giving up on query", "err", err)
		// The failure is recorded even when shutdown cancelled ctx, or the query stays pending.
		if upErr := finish(deps.Store.FailQuery(context.WithoutCancel(ctx), q.ID, err.Error())); upErr != nil {
			log.Error("failed to mark query failed", "err", upErr)
		}
		return err
	case err != nil:
		log.Warn("inference failed; will retry", "err", err)
		return err
	}

	if err := finish(deps.Store.CompleteQuery(ctx, q.ID, res.Text)); err != nil {
		return err
	}
	log.Info("query answered", "chars", len(res.Text))
	return nil
}

// finish treats a query another worker already finished as success.
func finish(err error) error {
	if errors.Is(err, store.ErrQueryNotPending) {
		return nil
	}
	return err
}
