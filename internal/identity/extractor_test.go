package identity

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydesk/internal/intake/models"
	dErrors "keydesk/pkg/domain-errors"
)

type stubRows struct {
	email string
	err   error
	reads int
}

func (s *stubRows) Email(_ context.Context, _ int) (string, error) {
	s.reads++
	return s.email, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestExtractPriorityOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("structured answers win over everything", func(t *testing.T) {
		rows := &stubRows{email: "row@example.com"}
		e := New(rows, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{
			Answers:     &models.FormAnswers{RespondentEmail: "answers@example.com"},
			NamedValues: map[string][]string{"メールアドレス": {"named@example.com"}},
			Row:         2,
		})
		require.NoError(t, err)
		assert.Equal(t, "answers@example.com", got)
		assert.Zero(t, rows.reads, "row store must not be consulted")
	})

	t.Run("named values win over the row store", func(t *testing.T) {
		rows := &stubRows{email: "row@example.com"}
		e := New(rows, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{
			NamedValues: map[string][]string{"メールアドレス": {"named@example.com", "second@example.com"}},
			Row:         2,
		})
		require.NoError(t, err)
		assert.Equal(t, "named@example.com", got, "first of the ordered values is taken")
		assert.Zero(t, rows.reads)
	})

	t.Run("falls back to the English field title", func(t *testing.T) {
		e := New(nil, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{
			NamedValues: map[string][]string{"Email Address": {"en@example.com"}},
			Row:         2,
		})
		require.NoError(t, err)
		assert.Equal(t, "en@example.com", got)
	})

	t.Run("falls back to the row store last", func(t *testing.T) {
		rows := &stubRows{email: "row@example.com"}
		e := New(rows, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{Row: 3})
		require.NoError(t, err)
		assert.Equal(t, "row@example.com", got)
		assert.Equal(t, 1, rows.reads)
	})

	t.Run("skips an invalid candidate and keeps trying", func(t *testing.T) {
		rows := &stubRows{email: "valid@example.com"}
		e := New(rows, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{
			NamedValues: map[string][]string{"メールアドレス": {"not-an-email"}},
			Row:         2,
		})
		require.NoError(t, err)
		assert.Equal(t, "valid@example.com", got)
	})
}

func TestExtractValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		candidate string
	}{
		{"empty", ""},
		{"missing domain", "user@"},
		{"missing local part", "@example.com"},
		{"no at sign", "user.example.com"},
		{"embedded whitespace", "user name@example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(&stubRows{}, discardLogger())

			_, err := e.Extract(ctx, models.SubmissionEvent{
				Answers: &models.FormAnswers{RespondentEmail: tc.candidate},
				Row:     5,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeIdentity))
		})
	}

	t.Run("row store read failure yields identity error", func(t *testing.T) {
		rows := &stubRows{err: errors.New("connection refused")}
		e := New(rows, discardLogger())

		_, err := e.Extract(ctx, models.SubmissionEvent{Row: 9})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeIdentity))
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		e := New(nil, discardLogger())

		got, err := e.Extract(ctx, models.SubmissionEvent{
			Answers: &models.FormAnswers{RespondentEmail: "  a.b@example.com  "},
			Row:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, "a.b@example.com", got)
	})
}
