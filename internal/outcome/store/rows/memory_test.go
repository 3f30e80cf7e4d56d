package rows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"keydesk/internal/outcome"
	"keydesk/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

// TestIntakeColumns verifies the intake-side reads used by identity
// extraction and expiry resolution.
func (s *MemoryStoreSuite) TestIntakeColumns() {
	s.Run("reads seeded email and expiry text", func() {
		s.store.Seed(2, "a.b@example.com", "90日")

		email, err := s.store.Email(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal("a.b@example.com", email)

		text, err := s.store.ExpiryText(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal("90日", text)
	})

	s.Run("returns ErrNotFound for unknown rows", func() {
		_, err := s.store.Email(s.ctx, 99)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.ExpiryText(s.ctx, 99)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestOutcomeWrites verifies overwrite semantics and the status-only path.
func (s *MemoryStoreSuite) TestOutcomeWrites() {
	s.Run("overwrites all four outcome fields", func() {
		s.store.Seed(3, "a.b@example.com", "90日")

		first := outcome.RowOutcome{Status: outcome.StatusFailure, ErrorDetail: "boom"}
		s.Require().NoError(s.store.WriteOutcome(s.ctx, 3, first))

		second := outcome.RowOutcome{
			Status:         outcome.StatusSuccess,
			CredentialName: "a.b-20260828090503",
			ExpiresAt:      "2026-11-26T00:00:00Z",
		}
		s.Require().NoError(s.store.WriteOutcome(s.ctx, 3, second))

		row, ok := s.store.Row(3)
		s.Require().True(ok)
		s.Equal("Success", row.Status)
		s.Equal("a.b-20260828090503", row.CredentialName)
		s.Equal("2026-11-26T00:00:00Z", row.ExpiresAt)
		s.Empty(row.ErrorDetail, "stale error detail must be cleared")
		s.Equal("a.b@example.com", row.Email, "intake columns are untouched")
	})

	s.Run("writes outcome for an unseeded row", func() {
		o := outcome.RowOutcome{Status: outcome.StatusFailure, ErrorDetail: "no identity"}
		s.Require().NoError(s.store.WriteOutcome(s.ctx, 7, o))

		row, ok := s.store.Row(7)
		s.Require().True(ok)
		s.Equal("Failure", row.Status)
	})

	s.Run("status-only write leaves the other fields alone", func() {
		s.Require().NoError(s.store.WriteOutcome(s.ctx, 4, outcome.RowOutcome{
			Status:         outcome.StatusSuccess,
			CredentialName: "keep-me-20260828090503",
		}))
		s.Require().NoError(s.store.WriteStatus(s.ctx, 4, "Failure (columns truncated)"))

		row, ok := s.store.Row(4)
		s.Require().True(ok)
		s.Equal("Failure (columns truncated)", row.Status)
		s.Equal("keep-me-20260828090503", row.CredentialName)
	})
}

func (s *MemoryStoreSuite) TestFieldCapacity() {
	s.Equal(outcome.FieldCount, NewMemory().FieldCapacity())
	s.Equal(1, NewMemoryWithCapacity(1).FieldCapacity())
}
