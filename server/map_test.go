package server

import (
	"math/rand"
	"testing"
)

const testCatalogJSON = `{
	"defaultDogSpeed": 1.0,
	"defaultBagCapacity": 3,
	"dogRetirementTime": 60,
	"lootGeneratorConfig": {"period": 5, "probability": 0.5},
	"maps": [
		{
			"id": "map1",
			"name": "Town",
			"roads": [{"x0": 0, "y0": 0, "x1": 10}],
			"buildings": [{"x": 1, "y": 1, "w": 2, "h": 2}],
			"offices": [{"id": "o1", "x": 5, "y": 0, "offsetX": 0, "offsetY": 0}],
			"lootTypes": [{"value": 3, "name": "key"}, {"value": 7, "name": "book"}]
		},
		{
			"id": "map2",
			"name": "Fast Town",
			"dogSpeed": 2.5,
			"bagCapacity": 5,
			"roads": [{"x0": 0, "y0": 0, "y1": 10}],
			"buildings": [],
			"offices": [],
			"lootTypes": [{"value": 1}]
		}
	]
}`

func TestLoadCatalog_Defaults(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	m1 := cat.FindMap("map1")
	if m1 == nil {
		t.Fatal("map1 not found")
	}
	if m1.DogSpeed != 1.0 {
		t.Errorf("expected default dog speed 1.0, got %f", m1.DogSpeed)
	}
	if m1.BagCapacity != 3 {
		t.Errorf("expected default bag capacity 3, got %d", m1.BagCapacity)
	}
}

func TestLoadCatalog_PerMapOverrideWins(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	m2 := cat.FindMap("map2")
	if m2 == nil {
		t.Fatal("map2 not found")
	}
	if m2.DogSpeed != 2.5 {
		t.Errorf("expected override dog speed 2.5, got %f", m2.DogSpeed)
	}
	if m2.BagCapacity != 5 {
		t.Errorf("expected override bag capacity 5, got %d", m2.BagCapacity)
	}
}

func TestLoadCatalog_UnknownMap(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.FindMap("nonexistent") != nil {
		t.Error("expected nil for unknown map id")
	}
}

func TestOffice_NumericID(t *testing.T) {
	o := Office{ID: "o42"}
	n, err := o.NumericID()
	if err != nil {
		t.Fatalf("NumericID: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestGetRandomPointOnRoad_StaysWithinExtent(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	m1 := cat.FindMap("map1")
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		p := m1.GetRandomPointOnRoad(rng)
		if p.X < 0 || p.X > 10 || p.Y != 0 {
			t.Fatalf("point off road: %+v", p)
		}
	}
}

func TestLootType_PassthroughPreservesExtraFields(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	m1 := cat.FindMap("map1")
	if len(m1.LootTypes) != 2 {
		t.Fatalf("expected 2 loot types, got %d", len(m1.LootTypes))
	}
	if m1.LootTypes[0].Value != 3 {
		t.Errorf("expected value 3, got %d", m1.LootTypes[0].Value)
	}
	raw := string(m1.LootTypes[0].Raw)
	if raw == "" {
		t.Error("expected raw JSON to be retained for passthrough")
	}
}
