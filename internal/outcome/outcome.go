// Package outcome records the terminal result of one intake event in the
// durable row store.
package outcome

import "context"

// Status is the terminal state persisted for a processed submission.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
)

// RowOutcome is the durable record of what happened to one submission.
// Exactly one is written per event, overwriting any prior value at that row.
type RowOutcome struct {
	Status         Status
	CredentialName string
	ExpiresAt      string
	ErrorDetail    string
}

// FieldCount is the number of outcome fields a fully capable row store
// persists: status, credential name, expires-at, error detail.
const FieldCount = 4

// RowStore is the port onto the durable tabular record. One row per intake
// event; field positions are a deployment concern behind this interface.
type RowStore interface {
	// Email reads the requester email column at the given row.
	Email(ctx context.Context, row int) (string, error)

	// ExpiryText reads the expiration-request text column at the given row.
	ExpiryText(ctx context.Context, row int) (string, error)

	// WriteOutcome overwrites the four outcome fields at the given row.
	WriteOutcome(ctx context.Context, row int, o RowOutcome) error

	// WriteStatus overwrites only the status field with an annotated value.
	// Used when the store cannot hold the full outcome.
	WriteStatus(ctx context.Context, row int, annotated string) error

	// FieldCapacity reports how many outcome fields the store can persist.
	FieldCapacity() int
}
