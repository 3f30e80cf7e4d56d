package outcome

import (
	"context"
	"log/slog"
)

// capacityMarker annotates a status-only write when the store cannot hold
// the full outcome.
const capacityMarker = " (columns truncated)"

// Recorder writes terminal outcomes. Record never returns an error: the
// workflow's real failure must not be masked by a secondary row-store
// failure, so internal failures are logged and swallowed.
type Recorder struct {
	rows   RowStore
	logger *slog.Logger
}

func NewRecorder(rows RowStore, logger *slog.Logger) *Recorder {
	return &Recorder{rows: rows, logger: logger}
}

// Record overwrites the outcome fields at the given row. Calling it twice
// with the same outcome leaves the row in the same state. If the store's
// field capacity is short, only the status is written, annotated with a
// capacity-shortfall marker.
func (r *Recorder) Record(ctx context.Context, row int, o RowOutcome) {
	if r.rows.FieldCapacity() < FieldCount {
		r.logger.WarnContext(ctx, "row store capacity short, degrading to status-only write",
			"row", row,
			"capacity", r.rows.FieldCapacity(),
			"required", FieldCount,
		)
		if err := r.rows.WriteStatus(ctx, row, string(o.Status)+capacityMarker); err != nil {
			r.logger.ErrorContext(ctx, "status-only outcome write failed",
				"row", row,
				"error", err,
			)
		}
		return
	}

	if err := r.rows.WriteOutcome(ctx, row, o); err != nil {
		r.logger.ErrorContext(ctx, "outcome write failed",
			"row", row,
			"status", o.Status,
			"error", err,
		)
	}
}
