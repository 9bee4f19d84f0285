package lifecycle

import (
	"context"

	"dogwalk/logging"
)

const (
	// EventPlayerJoined is emitted when a new player spawns a dog into a session.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerRetired is emitted when a dog is retired for inactivity.
	EventPlayerRetired logging.EventType = "lifecycle.player_retired"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	MapID  string  `json:"mapId"`
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// PlayerRetiredPayload captures the retirement record written to the records store.
type PlayerRetiredPayload struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	PlayTimeMs int64  `json:"playTimeMs"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerRetired publishes a player retirement event.
func PlayerRetired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerRetiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerRetired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}
