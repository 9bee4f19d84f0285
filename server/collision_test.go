package server

import "testing"

func TestFindGatherEvents_StraightPickup(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{ID: 100, Position: Point2D{X: 5, Y: 0}, Width: LOOT_WIDTH, Kind: ItemLoot},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ItemID != 100 || events[0].GathererID != 1 {
		t.Errorf("unexpected event: %+v", events[0])
	}
	if events[0].Time < 0.4 || events[0].Time > 0.6 {
		t.Errorf("expected time near 0.5, got %f", events[0].Time)
	}
}

func TestFindGatherEvents_OutOfRangeMissed(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{ID: 100, Position: Point2D{X: 5, Y: 5}, Width: LOOT_WIDTH, Kind: ItemLoot},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected 0 events, got %d", len(events))
	}
}

func TestFindGatherEvents_BehindOrAheadOfSweepIgnored(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{ID: 1, Position: Point2D{X: -1, Y: 0}, Width: LOOT_WIDTH, Kind: ItemLoot},
		{ID: 2, Position: Point2D{X: 11, Y: 0}, Width: LOOT_WIDTH, Kind: ItemLoot},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected 0 events, got %d", len(events))
	}
}

func TestFindGatherEvents_DegenerateGathererSkipped(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 3, Y: 3}, End: Point2D{X: 3, Y: 3}, Width: 0.6},
	}
	items := []Item{
		{ID: 1, Position: Point2D{X: 3.1, Y: 3.1}, Width: LOOT_WIDTH, Kind: ItemLoot},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 0 {
		t.Fatalf("expected 0 events for a degenerate gatherer, got %d", len(events))
	}
}

func TestFindGatherEvents_SortedByTime(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{ID: 1, Position: Point2D{X: 8, Y: 0}, Width: LOOT_WIDTH, Kind: ItemLoot},
		{ID: 2, Position: Point2D{X: 2, Y: 0}, Width: LOOT_WIDTH, Kind: ItemLoot},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ItemID != 2 || events[1].ItemID != 1 {
		t.Errorf("events not sorted by time: %+v", events)
	}
}

func TestFindGatherEvents_OfficeWidthWidensRadius(t *testing.T) {
	gatherers := []Gatherer{
		{ID: 1, Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}, Width: 0.6},
	}
	items := []Item{
		{ID: 1, Position: Point2D{X: 5, Y: 1.0}, Width: OFFICE_WIDTH, Kind: ItemOffice},
	}

	events := FindGatherEvents(gatherers, items)
	if len(events) != 1 {
		t.Fatalf("expected office within combined radius to register, got %d", len(events))
	}
	if events[0].Kind != ItemOffice {
		t.Errorf("expected office kind, got %v", events[0].Kind)
	}
}
