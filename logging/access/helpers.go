// Package access publishes per-request HTTP log events, modeled on the
// original C++ server's request access log (my_logger).
package access

import (
	"context"

	"dogwalk/logging"
)

const (
	// EventRequestHandled is emitted after every HTTP request completes.
	EventRequestHandled logging.EventType = "access.request_handled"
	// EventRequestRejected is emitted when auth or validation rejects a request before it reaches a handler.
	EventRequestRejected logging.EventType = "access.request_rejected"
)

// RequestHandledPayload captures one access-log line.
type RequestHandledPayload struct {
	Method        string `json:"method"`
	Target        string `json:"target"`
	Status        int    `json:"status"`
	DurationMicros int64  `json:"durationMicros"`
}

// RequestRejectedPayload captures why a request was rejected before dispatch.
type RequestRejectedPayload struct {
	Method string `json:"method"`
	Target string `json:"target"`
	Status int    `json:"status"`
	Code   string `json:"code"`
}

// RequestHandled publishes an access-log event for a completed request.
func RequestHandled(ctx context.Context, pub logging.Publisher, payload RequestHandledPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRequestHandled,
		Severity: logging.SeverityInfo,
		Category: "access",
		Payload:  payload,
		Extra:    extra,
	})
}

// RequestRejected publishes a warning event for a request rejected before dispatch.
func RequestRejected(ctx context.Context, pub logging.Publisher, payload RequestRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRequestRejected,
		Severity: logging.SeverityWarn,
		Category: "access",
		Payload:  payload,
		Extra:    extra,
	})
}
