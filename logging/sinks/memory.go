package sinks

import (
	"context"
	"sync"

	"dogwalk/logging"
)

// MemorySink captures every published event in memory; it exists for
// tests that want to assert on what a Game published without standing up
// a real file or console sink.
type MemorySink struct {
	mu     sync.RWMutex
	events []logging.Event
}

// NewMemorySink builds an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{events: make([]logging.Event, 0)}
}

// Write satisfies logging.Sink, appending a defensive copy of event.
func (s *MemorySink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, copyEvent(event))
	return nil
}

// Events returns a snapshot of every event captured so far.
func (s *MemorySink) Events() []logging.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]logging.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset discards every captured event, for reuse across subtests.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}

// Close is a no-op: nothing about MemorySink needs releasing.
func (s *MemorySink) Close(context.Context) error {
	return nil
}

func copyEvent(event logging.Event) logging.Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]logging.EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		extra := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			extra[k] = v
		}
		cloned.Extra = extra
	}
	return cloned
}
