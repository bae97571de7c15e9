package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *recordingSink) Emit(_ context.Context, e Event) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestEventNormalize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	e := Event{EventType: EventLogout}.Normalize(now)
	assert.Equal(t, AnonymousActor, e.Actor)
	assert.Equal(t, now, e.Timestamp)

	kept := Event{Actor: "a@b.c", Timestamp: now.Add(-time.Hour)}.Normalize(now)
	assert.Equal(t, "a@b.c", kept.Actor)
	assert.Equal(t, now.Add(-time.Hour), kept.Timestamp)
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDispatcher(Config{BufferSize: 16, Now: func() time.Time { return now }}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: EventRoleViolation, Actor: "x@y.z"})
	}
	d.Close()

	events := sink.all()
	require.Len(t, events, 5)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Zero(t, d.Dropped())

	// Emit after close is ignored.
	d.Emit(context.Background(), Event{EventType: EventLogout})
	assert.Len(t, sink.all(), 5)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(Config{BufferSize: 1}, sink)

	// First event is taken by the worker and blocks in the sink, second fills
	// the buffer, the rest are dropped.
	d.Emit(context.Background(), Event{EventType: EventLogout})
	require.Eventually(t, func() bool { return len(d.ch) == 0 }, time.Second, time.Millisecond)
	d.Emit(context.Background(), Event{EventType: EventLogout})
	d.Emit(context.Background(), Event{EventType: EventLogout})
	d.Emit(context.Background(), Event{EventType: EventLogout})

	assert.Equal(t, uint64(2), d.Dropped())
	close(sink.block)
	d.Close()
	assert.Len(t, sink.all(), 2)
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Emit(context.Background(), Event{})
	d.Close()
	assert.Zero(t, d.Dropped())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogSink{Logger: logger}.Emit(context.Background(), Event{
		Timestamp: time.Now(),
		EventType: EventSessionExpired,
		Actor:     "ana@example.edu",
		IP:        "10.0.0.1",
		UserAgent: "test-agent",
		Path:      "/student/dashboard",
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "security event", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "session_expired", rec["event_type"])
	assert.Equal(t, "ana@example.edu", rec["actor"])
	assert.Equal(t, "/student/dashboard", rec["path"])
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, nil, b}.Emit(context.Background(), Event{EventType: EventLogout})
	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 1)
}
