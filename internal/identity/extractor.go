// Package identity resolves the requester's email identity from an intake
// event. Events arrive in several shapes depending on how the form frontend
// delivers them, so extraction is a fixed-priority chain of strategies; the
// first source that yields a validating candidate wins.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"keydesk/internal/intake/models"
	dErrors "keydesk/pkg/domain-errors"
)

// Form field names the email answer is submitted under. The Japanese title
// is the canonical one on the access-request form; the English title covers
// forms cloned for other locales.
const (
	emailFieldName         = "メールアドレス"
	emailFieldNameFallback = "Email Address"
)

// RowEmailReader reads the email column of the row store directly. It is the
// lowest-priority identity source, used when the event itself carries no
// usable candidate.
type RowEmailReader interface {
	Email(ctx context.Context, row int) (string, error)
}

// Extractor resolves a validated requester identity from a submission event.
type Extractor struct {
	rows     RowEmailReader
	validate *validator.Validate
	logger   *slog.Logger
}

func New(rows RowEmailReader, logger *slog.Logger) *Extractor {
	return &Extractor{
		rows:     rows,
		validate: validator.New(),
		logger:   logger,
	}
}

type strategy struct {
	name string
	fn   func(ctx context.Context, event models.SubmissionEvent) string
}

func (e *Extractor) strategies() []strategy {
	return []strategy{
		{name: "form_answers", fn: func(_ context.Context, event models.SubmissionEvent) string {
			if event.Answers == nil {
				return ""
			}
			return event.Answers.RespondentEmail
		}},
		{name: "named_values", fn: func(_ context.Context, event models.SubmissionEvent) string {
			for _, field := range []string{emailFieldName, emailFieldNameFallback} {
				if values := event.NamedValues[field]; len(values) > 0 {
					return values[0]
				}
			}
			return ""
		}},
		{name: "row_store", fn: func(ctx context.Context, event models.SubmissionEvent) string {
			if e.rows == nil {
				return ""
			}
			email, err := e.rows.Email(ctx, event.Row)
			if err != nil {
				e.logger.DebugContext(ctx, "row store identity read failed",
					"row", event.Row,
					"error", err,
				)
				return ""
			}
			return email
		}},
	}
}

// Extract tries each identity source in priority order and returns the first
// candidate that passes structural email validation. It fails with an
// identity error before any external call is made.
func (e *Extractor) Extract(ctx context.Context, event models.SubmissionEvent) (string, error) {
	for _, s := range e.strategies() {
		candidate := strings.TrimSpace(s.fn(ctx, event))
		if candidate == "" {
			continue
		}
		if !e.isValidEmail(candidate) {
			e.logger.DebugContext(ctx, "identity candidate rejected",
				"source", s.name,
				"row", event.Row,
			)
			continue
		}
		return candidate, nil
	}

	return "", dErrors.Newf(dErrors.CodeIdentity, "no valid requester identity in submission at row %d", event.Row)
}

func (e *Extractor) isValidEmail(candidate string) bool {
	if strings.ContainsAny(candidate, " \t\r\n") {
		return false
	}
	return e.validate.Var(candidate, "required,email") == nil
}
