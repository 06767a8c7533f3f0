package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher inbox and persists them.
// A failed append is logged and the worker keeps draining; it never takes
// the service down over an audit write.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

// drain flushes whatever is still buffered at shutdown using a background
// context, since the run context is already cancelled.
func (w *Worker) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "persist audit event failed",
			"action", event.Action,
			"subject_id", event.SubjectID,
			"error", err,
		)
	}
}
