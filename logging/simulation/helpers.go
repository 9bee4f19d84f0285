package simulation

import (
	"context"

	"dogwalk/logging"
)

const (
	// EventTickCompleted is emitted once per tick, after every session has been walked through the pipeline.
	EventTickCompleted logging.EventType = "simulation.tick_completed"
	// EventCheckpointSaved is emitted after a successful checkpoint write.
	EventCheckpointSaved logging.EventType = "simulation.checkpoint_saved"
	// EventCheckpointFailed is emitted when a checkpoint write fails.
	EventCheckpointFailed logging.EventType = "simulation.checkpoint_failed"
)

// TickCompletedPayload captures timing and population details for a tick.
type TickCompletedPayload struct {
	DeltaMillis  int64 `json:"deltaMillis"`
	SessionCount int   `json:"sessionCount"`
	DogCount     int   `json:"dogCount"`
}

// CheckpointSavedPayload captures the path and duration of a successful save.
type CheckpointSavedPayload struct {
	Path         string `json:"path"`
	DurationMillis int64 `json:"durationMillis"`
}

// CheckpointFailedPayload captures why a checkpoint write failed.
type CheckpointFailedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// TickCompleted publishes a debug event summarizing one tick.
func TickCompleted(ctx context.Context, pub logging.Publisher, tick uint64, payload TickCompletedPayload, extra map[string]any) {
	publish(ctx, pub, EventTickCompleted, tick, logging.SeverityDebug, payload, extra)
}

// CheckpointSaved publishes an info event after a successful checkpoint.
func CheckpointSaved(ctx context.Context, pub logging.Publisher, tick uint64, payload CheckpointSavedPayload, extra map[string]any) {
	publish(ctx, pub, EventCheckpointSaved, tick, logging.SeverityInfo, payload, extra)
}

// CheckpointFailed publishes an error event when a checkpoint write fails.
func CheckpointFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload CheckpointFailedPayload, extra map[string]any) {
	publish(ctx, pub, EventCheckpointFailed, tick, logging.SeverityError, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Severity: severity,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	})
}
