// Package rows provides row-store implementations: an in-memory store for
// tests and local development, and a PostgreSQL store for deployments.
package rows

import (
	"context"
	"sync"

	"keydesk/internal/outcome"
	"keydesk/pkg/platform/sentinel"
)

// Row mirrors the fixed-position fields of one row store row.
type Row struct {
	Email          string
	ExpiryText     string
	Status         string
	CredentialName string
	ExpiresAt      string
	ErrorDetail    string
}

// Memory is an in-memory row store. It intentionally favors clarity over
// performance.
type Memory struct {
	mu       sync.RWMutex
	rows     map[int]Row
	capacity int
}

// NewMemory creates a fully capable in-memory row store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[int]Row), capacity: outcome.FieldCount}
}

// NewMemoryWithCapacity creates a store with a reduced outcome-field
// capacity, for exercising the recorder's degraded write path.
func NewMemoryWithCapacity(capacity int) *Memory {
	return &Memory{rows: make(map[int]Row), capacity: capacity}
}

// Seed places the intake-side columns for a row, the way the form binding
// would have populated them before processing starts.
func (m *Memory) Seed(row int, email, expiryText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[row]
	r.Email = email
	r.ExpiryText = expiryText
	m.rows[row] = r
}

// Row returns a copy of the stored row for assertions.
func (m *Memory) Row(row int) (Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[row]
	return r, ok
}

func (m *Memory) Email(_ context.Context, row int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[row]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return r.Email, nil
}

func (m *Memory) ExpiryText(_ context.Context, row int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[row]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return r.ExpiryText, nil
}

func (m *Memory) WriteOutcome(_ context.Context, row int, o outcome.RowOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[row]
	r.Status = string(o.Status)
	r.CredentialName = o.CredentialName
	r.ExpiresAt = o.ExpiresAt
	r.ErrorDetail = o.ErrorDetail
	m.rows[row] = r
	return nil
}

func (m *Memory) WriteStatus(_ context.Context, row int, annotated string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rows[row]
	r.Status = annotated
	m.rows[row] = r
	return nil
}

func (m *Memory) FieldCapacity() int {
	return m.capacity
}
