package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and forwards them to the real
// sink. It keeps the workflow free of broker latency: the audit trail is
// best-effort and a sink failure is logged, never propagated back into
// event processing.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit event dropped",
					"event_id", event.ID,
					"row", event.Row,
					"error", err,
				)
			}
		}
	}
}
