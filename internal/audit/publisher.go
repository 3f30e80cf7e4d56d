package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives audit events. It is append-only.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Stamp fills the generated fields of an event before it is handed to a
// sink.
func Stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Action == "" {
		event.Action = ActionSubmissionProcessed
	}
	return event
}

// MemorySink collects events in memory for tests and local development.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Stamp(event))
	return nil
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ChannelSink hands events to a background worker without blocking the
// workflow. A full inbox drops the event; the audit trail is best-effort
// and must never stall processing.
type ChannelSink struct {
	inbox chan<- Event
}

func NewChannelSink(inbox chan<- Event) *ChannelSink {
	return &ChannelSink{inbox: inbox}
}

func (s *ChannelSink) Emit(_ context.Context, event Event) error {
	select {
	case s.inbox <- Stamp(event):
		return nil
	default:
		return errors.New("audit inbox full")
	}
}
