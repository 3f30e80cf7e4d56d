// Package audit captures one structured event per processed submission.
// Events are transport-agnostic so sinks can fan out; the Kafka publisher is
// the deployment sink, the memory sink serves tests and local development.
package audit

import "time"

// Actions recorded by the workflow.
const (
	ActionSubmissionProcessed = "submission_processed"
)

// Event is emitted from the workflow to capture what happened to one
// intake event. It never carries the credential secret.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Row       int       `json:"row"`
	Requester string    `json:"requester,omitempty"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
