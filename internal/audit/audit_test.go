package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStamp(t *testing.T) {
	t.Run("fills generated fields", func(t *testing.T) {
		got := Stamp(Event{Row: 3, Status: "Success"})
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.Timestamp.IsZero())
		assert.Equal(t, ActionSubmissionProcessed, got.Action)
	})

	t.Run("keeps provided fields", func(t *testing.T) {
		ts := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
		got := Stamp(Event{ID: "fixed", Timestamp: ts, Action: "custom"})
		assert.Equal(t, "fixed", got.ID)
		assert.Equal(t, ts, got.Timestamp)
		assert.Equal(t, "custom", got.Action)
	})
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Emit(context.Background(), Event{Row: 1, Status: "Failure", Reason: "no identity"}))
	require.NoError(t, sink.Emit(context.Background(), Event{Row: 2, Status: "Success"}))

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Row)
	assert.Equal(t, "no identity", events[0].Reason)
	assert.Equal(t, "Success", events[1].Status)
}

func TestChannelSink(t *testing.T) {
	t.Run("hands events to the inbox", func(t *testing.T) {
		inbox := make(chan Event, 1)
		sink := NewChannelSink(inbox)

		require.NoError(t, sink.Emit(context.Background(), Event{Row: 5}))
		got := <-inbox
		assert.Equal(t, 5, got.Row)
		assert.NotEmpty(t, got.ID)
	})

	t.Run("full inbox drops instead of blocking", func(t *testing.T) {
		inbox := make(chan Event, 1)
		sink := NewChannelSink(inbox)

		require.NoError(t, sink.Emit(context.Background(), Event{Row: 1}))
		assert.Error(t, sink.Emit(context.Background(), Event{Row: 2}))
	})
}

type flakySink struct {
	mu    sync.Mutex
	calls int
	seen  []Event
}

func (f *flakySink) Emit(_ context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		return errors.New("broker unavailable")
	}
	f.seen = append(f.seen, event)
	return nil
}

func (f *flakySink) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func TestWorkerSurvivesSinkFailures(t *testing.T) {
	inbox := make(chan Event, 2)
	sink := &flakySink{}
	worker := NewWorker(sink, inbox, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Event{Row: 1}
	inbox <- Event{Row: 2}

	assert.Eventually(t, func() bool {
		return sink.delivered() == 1
	}, time.Second, 10*time.Millisecond, "worker keeps consuming after a sink failure")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
