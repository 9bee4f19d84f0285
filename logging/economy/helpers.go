package economy

import (
	"context"

	"dogwalk/logging"
)

const (
	// EventLootSpawned is emitted when the loot generator places a new item on a road.
	EventLootSpawned logging.EventType = "economy.loot_spawned"
	// EventLootGathered is emitted when a dog's sweep collects loot into its bag.
	EventLootGathered logging.EventType = "economy.loot_gathered"
	// EventBagFull is emitted when loot was swept but the dog's bag was at capacity.
	EventBagFull logging.EventType = "economy.bag_full"
	// EventLootReleased is emitted when a dog deposits its bag at an office.
	EventLootReleased logging.EventType = "economy.loot_released"
)

// LootSpawnedPayload describes a freshly spawned item.
type LootSpawnedPayload struct {
	LootID   uint64  `json:"lootId"`
	TypeID   int     `json:"typeId"`
	Value    int     `json:"value"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	SessionID uint64 `json:"sessionId"`
}

// LootGatheredPayload describes a successful pickup.
type LootGatheredPayload struct {
	LootID uint64 `json:"lootId"`
	TypeID int    `json:"typeId"`
	Value  int    `json:"value"`
}

// BagFullPayload describes a pickup that was skipped because the bag was full.
type BagFullPayload struct {
	LootID   uint64 `json:"lootId"`
	Capacity int    `json:"capacity"`
}

// LootReleasedPayload describes an office deposit.
type LootReleasedPayload struct {
	ItemCount  int `json:"itemCount"`
	ScoreDelta int `json:"scoreDelta"`
	NewScore   int `json:"newScore"`
}

// LootSpawned publishes a loot-spawn event.
func LootSpawned(ctx context.Context, pub logging.Publisher, tick uint64, payload LootSpawnedPayload, extra map[string]any) {
	publish(ctx, pub, EventLootSpawned, tick, logging.EntityRef{}, logging.SeverityDebug, payload, extra)
}

// LootGathered publishes a loot-gather event for the given dog actor.
func LootGathered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LootGatheredPayload, extra map[string]any) {
	publish(ctx, pub, EventLootGathered, tick, actor, logging.SeverityInfo, payload, extra)
}

// BagFull publishes a debug event when a dog's bag could not accept more loot.
func BagFull(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BagFullPayload, extra map[string]any) {
	publish(ctx, pub, EventBagFull, tick, actor, logging.SeverityDebug, payload, extra)
}

// LootReleased publishes an office-deposit event.
func LootReleased(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LootReleasedPayload, extra map[string]any) {
	publish(ctx, pub, EventLootReleased, tick, actor, logging.SeverityInfo, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: "economy",
		Payload:  payload,
		Extra:    extra,
	})
}
