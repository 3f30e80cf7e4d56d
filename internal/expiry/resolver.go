// Package expiry resolves a free-text validity period ("90日") into an
// absolute expiration instant.
package expiry

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"keydesk/pkg/requestcontext"
)

// dayPattern matches an integer immediately followed by the day unit token
// anywhere in the request text.
var dayPattern = regexp.MustCompile(`(\d+)日`)

// Resolver turns expiration request text into an absolute UTC instant. It
// never fails: unusable input falls back to the configured default day count
// with a diagnostic note.
type Resolver struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve computes now + the requested day offset, truncated to the start of
// that UTC day. The current time comes from the request context, so the
// result is fully determined by text, defaultDays and the injected clock.
func (r *Resolver) Resolve(ctx context.Context, text string, defaultDays int) time.Time {
	days := defaultDays

	match := dayPattern.FindStringSubmatch(text)
	switch {
	case match == nil:
		r.logger.InfoContext(ctx, "expiration request has no day count, using default",
			"text", text,
			"default_days", defaultDays,
		)
	default:
		parsed, err := strconv.Atoi(match[1])
		if err != nil || parsed <= 0 {
			r.logger.InfoContext(ctx, "expiration request day count unusable, using default",
				"text", text,
				"default_days", defaultDays,
			)
		} else {
			days = parsed
		}
	}

	expires := requestcontext.Now(ctx).UTC().AddDate(0, 0, days)
	return time.Date(expires.Year(), expires.Month(), expires.Day(), 0, 0, 0, 0, time.UTC)
}
