package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"dogwalk/logging"
)

// ConsoleSink renders one line per event to an io.Writer, meant for local
// development and the default "console" sink in internal/app.
type ConsoleSink struct {
	logger *log.Logger
}

// NewConsoleSink builds a ConsoleSink writing through w. UseColor is
// accepted on cfg for forward compatibility but not yet rendered.
func NewConsoleSink(w io.Writer, cfg logging.ConsoleConfig) *ConsoleSink {
	return &ConsoleSink{logger: log.New(w, "", log.LstdFlags)}
}

// Write satisfies logging.Sink, formatting event as a single log line.
func (s *ConsoleSink) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Printf("[%s] tick=%d actor=%s severity=%s%s%s",
		event.Type,
		event.Tick,
		describeEntity(event.Actor),
		describeSeverity(event.Severity),
		describeTargets(event.Targets),
		describePayload(event.Payload),
	)
	return nil
}

// Close is a no-op: the underlying writer is owned by the caller.
func (s *ConsoleSink) Close(context.Context) error {
	return nil
}

func describeSeverity(sev logging.Severity) string {
	switch sev {
	case logging.SeverityDebug:
		return "debug"
	case logging.SeverityInfo:
		return "info"
	case logging.SeverityWarn:
		return "warn"
	case logging.SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func describeEntity(ref logging.EntityRef) string {
	switch {
	case ref.ID == "":
		return string(ref.Kind)
	case ref.Kind == "":
		return ref.ID
	default:
		return fmt.Sprintf("%s:%s", ref.Kind, ref.ID)
	}
}

func describeTargets(targets []logging.EntityRef) string {
	if len(targets) == 0 {
		return ""
	}
	parts := make([]string, len(targets))
	for i, target := range targets {
		parts[i] = describeEntity(target)
	}
	return " targets=" + strings.Join(parts, ",")
}

func describePayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(" payload=%v", payload)
	}
	return " payload=" + string(data)
}
