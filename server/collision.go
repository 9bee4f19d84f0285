package server

import "sort"

// ItemKind distinguishes gatherable loot from drop-off offices in a
// collision pass; offices never spawn loot but use the same geometry.
type ItemKind int

const (
	ItemLoot ItemKind = iota
	ItemOffice
)

// LOOT_WIDTH and OFFICE_WIDTH are the collision widths of the two item
// kinds (§3); dogs use DogWidth from map.go.
const (
	LOOT_WIDTH   = 0.0
	OFFICE_WIDTH = 0.5
)

// Item is a stationary collision target: a piece of loot or an office.
type Item struct {
	ID       uint64
	Position Point2D
	Width    float64
	Kind     ItemKind
}

// Gatherer is a moving collision source: a dog's swept path over one tick.
type Gatherer struct {
	ID    uint64
	Start Point2D
	End   Point2D
	Width float64
}

// GatheringEvent records that Gatherer GathererID collected/touched item ItemID
// at sweep parameter Time in [0,1] along the gatherer's path.
type GatheringEvent struct {
	ItemID     uint64
	GathererID uint64
	Kind       ItemKind
	SqDistance float64
	Time       float64
}

// FindGatherEvents sweeps every gatherer's motion segment against every
// item and reports all valid collisions, stable-sorted by Time ascending.
//
// A collision is valid when the projection of the item onto the gatherer's
// path falls within the segment (0<=t*<=1) and the perpendicular distance
// from the item to that projected point is within the combined radius of
// item and gatherer (§4.2). Mirrors collision_detector.h's TryCollectPoint.
func FindGatherEvents(gatherers []Gatherer, items []Item) []GatheringEvent {
	var events []GatheringEvent

	for _, g := range gatherers {
		movement := g.End.Sub(g.Start)
		sqMoveLen := movement.SqLen()
		if sqMoveLen == 0 {
			// Degenerate gatherer (start == end): skip entirely, no events
			// (§4.2), matching TryCollectPoint's zero-length-sweep handling.
			continue
		}

		for _, it := range items {
			toItem := it.Position.Sub(g.Start)
			t := movement.Dot(toItem) / sqMoveLen

			if t < 0 || t > 1 {
				continue
			}

			projected := g.Start.Add(movement.Scale(t))
			sqDist := SqDistance(it.Position, projected)

			combined := g.Width + it.Width
			if sqDist > combined*combined {
				continue
			}

			events = append(events, GatheringEvent{
				ItemID:     it.ID,
				GathererID: g.ID,
				Kind:       it.Kind,
				SqDistance: sqDist,
				Time:       t,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	return events
}
