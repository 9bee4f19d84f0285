package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"dogwalk/logging"
)

// JSON is a newline-delimited-JSON sink, one object per event. With a
// positive flushInterval it batches writes and flushes on a ticker;
// otherwise every Write flushes immediately.
type JSON struct {
	mu      sync.Mutex
	writer  *bufio.Writer
	encoder *json.Encoder
	flushed bool
}

// NewJSON builds a JSON sink over w. A nil w discards everything, which
// is occasionally useful when a sink is configured but not yet wired to
// a real file.
func NewJSON(w io.Writer, flushInterval time.Duration) *JSON {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	sink := &JSON{
		writer:  buf,
		encoder: json.NewEncoder(buf),
		flushed: flushInterval <= 0,
	}
	if flushInterval > 0 {
		go sink.flushEvery(flushInterval)
	}
	return sink
}

// Write satisfies logging.Sink, encoding event as one JSON line.
func (s *JSON) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(jsonRecord(event)); err != nil {
		return err
	}
	if s.flushed {
		return s.writer.Flush()
	}
	return nil
}

// jsonRecord reshapes an Event into the wire map actually encoded, so the
// field order and names on disk are explicit rather than whatever
// encoding/json derives from Event's struct tags.
func jsonRecord(event logging.Event) map[string]any {
	return map[string]any{
		"type":      event.Type,
		"tick":      event.Tick,
		"time":      event.Time.Format(time.RFC3339Nano),
		"severity":  event.Severity,
		"category":  event.Category,
		"actor":     event.Actor,
		"targets":   event.Targets,
		"payload":   event.Payload,
		"extra":     event.Extra,
		"traceId":   event.TraceID,
		"commandId": event.CommandID,
	}
}

// Close flushes any buffered writes.
func (s *JSON) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}

func (s *JSON) flushEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		s.writer.Flush()
		s.mu.Unlock()
	}
}
