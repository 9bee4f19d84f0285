package server

import (
	"context"
	"strconv"

	"dogwalk/logging"
	"dogwalk/logging/economy"
	"dogwalk/logging/lifecycle"
	"dogwalk/logging/simulation"
)

// dogRef builds the actor reference attached to per-dog domain events. A
// dog is the player's avatar, so it is logged under the player entity kind.
func dogRef(id uint64) logging.EntityRef {
	return logging.EntityRef{Kind: logging.EntityKindPlayer, ID: strconv.FormatUint(id, 10)}
}

// Tick advances every live session by deltaMs milliseconds, walking each
// through the pipeline fixed by §4.5: move, spawn loot, register items,
// gather, retire, then advance the checkpoint accumulator. Checkpoint
// failures are logged and returned to the caller but do not abort the
// tick for other sessions (§7).
func (g *Game) Tick(ctx context.Context, deltaMs int64) error {
	deltaSeconds := float64(deltaMs) / 1000.0
	nowMs := int64(0)
	if g.Clock != nil {
		nowMs = g.Clock.NowMs()
	}

	dogCount := 0
	for _, sess := range g.Sessions() {
		g.tickSession(ctx, sess, deltaMs, deltaSeconds, nowMs)
		dogCount += len(sess.Dogs)
	}

	var checkpointErr error
	g.saveTimerMs += float64(deltaMs)
	if g.CheckpointStore != nil && g.SaveIntervalMs > 0 && g.saveTimerMs >= g.SaveIntervalMs {
		g.saveTimerMs = 0
		if err := g.SaveState(); err != nil {
			checkpointErr = err
			simulation.CheckpointFailed(ctx, g.Publisher, 0, simulation.CheckpointFailedPayload{
				Reason: err.Error(),
			}, nil)
		} else {
			simulation.CheckpointSaved(ctx, g.Publisher, 0, simulation.CheckpointSavedPayload{}, nil)
		}
	}

	simulation.TickCompleted(ctx, g.Publisher, 0, simulation.TickCompletedPayload{
		DeltaMillis:  deltaMs,
		SessionCount: len(g.sessions),
		DogCount:     dogCount,
	}, nil)

	return checkpointErr
}

func (g *Game) tickSession(ctx context.Context, sess *GameSession, deltaMs int64, deltaSeconds float64, nowMs int64) {
	// Step 1: move dogs, collecting one gatherer per dog for this tick's
	// sweep.
	gatherers := make([]Gatherer, 0, len(sess.Dogs))
	for _, d := range sess.Dogs {
		oldPos := d.Position
		newPos, hitWall := UpdatePosition(sess.Map.RoadIndex(), oldPos, d.Velocity, d.Direction, deltaSeconds)

		if newPos == oldPos {
			d.Status = DogInactive
			d.InactivityTime += deltaSeconds
		} else {
			d.Status = DogActive
			d.InactivityTime = 0
		}
		if hitWall {
			d.Velocity = Vec2D{}
		}

		gatherers = append(gatherers, Gatherer{ID: d.ID, Start: oldPos, End: newPos, Width: DogWidth})
		d.Position = newPos
	}

	// Step 2: spawn loot.
	spawnCount := g.lootGen.NextCount(len(sess.Loot), len(sess.Dogs), float64(deltaMs))
	for i := 0; i < spawnCount; i++ {
		if sess.Map.LootTypeCount() == 0 {
			break
		}
		typeIdx := g.rng.Intn(sess.Map.LootTypeCount())
		value, _ := sess.Map.LootValue(typeIdx)
		pos := sess.Map.GetRandomPointOnRoad(g.rng)
		loot := Loot{ID: g.Counters.NextLootID(), TypeID: typeIdx, Value: value, Position: pos}
		sess.AddLoot(loot)
		economy.LootSpawned(ctx, g.Publisher, 0, economy.LootSpawnedPayload{
			LootID: loot.ID, TypeID: typeIdx, Value: value, X: pos.X, Y: pos.Y, SessionID: sess.ID,
		}, nil)
	}

	// Step 3: register items (free loot and offices) for the collision pass.
	items := make([]Item, 0, len(sess.Loot)+len(sess.Map.Offices))
	for _, l := range sess.Loot {
		items = append(items, Item{ID: l.ID, Position: l.Position, Width: LOOT_WIDTH, Kind: ItemLoot})
	}
	for _, o := range sess.Map.Offices {
		numID, err := o.NumericID()
		if err != nil {
			continue
		}
		items = append(items, Item{ID: numID, Position: o.Position(), Width: OFFICE_WIDTH, Kind: ItemOffice})
	}

	// Step 4: gather.
	events := FindGatherEvents(gatherers, items)
	claimed := make(map[uint64]struct{})
	dogByID := make(map[uint64]*Dog, len(sess.Dogs))
	for _, d := range sess.Dogs {
		dogByID[d.ID] = d
	}

	for _, ev := range events {
		dog := dogByID[ev.GathererID]
		if dog == nil {
			continue
		}
		switch ev.Kind {
		case ItemOffice:
			itemCount, scoreDelta := dog.ReleaseLoot()
			if itemCount > 0 {
				economy.LootReleased(ctx, g.Publisher, 0, dogRef(dog.ID), economy.LootReleasedPayload{
					ItemCount: itemCount, ScoreDelta: scoreDelta, NewScore: dog.Score,
				}, nil)
			}
		case ItemLoot:
			if _, already := claimed[ev.ItemID]; already {
				continue
			}
			idx := sess.FindLootIndex(ev.ItemID)
			if idx < 0 {
				continue
			}
			if dog.BagFull(sess.Map.BagCapacity) {
				economy.BagFull(ctx, g.Publisher, 0, dogRef(dog.ID), economy.BagFullPayload{
					LootID: ev.ItemID, Capacity: sess.Map.BagCapacity,
				}, nil)
				continue
			}
			loot := sess.RemoveLootAt(idx)
			dog.Bag = append(dog.Bag, loot)
			claimed[ev.ItemID] = struct{}{}
			economy.LootGathered(ctx, g.Publisher, 0, dogRef(dog.ID), economy.LootGatheredPayload{
				LootID: loot.ID, TypeID: loot.TypeID, Value: loot.Value,
			}, nil)
		}
	}

	// Step 5: retire.
	retirementThreshold := g.Catalog.RetirementTime
	var toRetire []*Dog
	for _, d := range sess.Dogs {
		if d.InactivityTime >= retirementThreshold {
			toRetire = append(toRetire, d)
		}
	}
	for _, d := range toRetire {
		record := RetiredRecord{
			UUID:       d.UUID,
			Name:       d.Name,
			Score:      d.Score,
			PlayTimeMs: nowMs - d.JoinTimeMs,
		}
		if g.Records != nil {
			// A DB write failure aborts this dog's retirement but not the
			// tick (§7): the dog stays and will be retried next tick.
			if err := g.Records.SaveRecord(ctx, record); err != nil {
				continue
			}
		}
		lifecycle.PlayerRetired(ctx, g.Publisher, 0, dogRef(d.ID), lifecycle.PlayerRetiredPayload{
			Name: d.Name, Score: d.Score, PlayTimeMs: record.PlayTimeMs,
		}, nil)
		g.RemovePlayerByDogID(d.ID)
	}
}
