package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

const (
	// DogWidth is the collision width of every dog (§3).
	DogWidth = 0.6

	// DefaultDogSpeed is the fallback per-map dog speed in world units/second.
	DefaultDogSpeed = 1.0
	// DefaultBagCapacity is the fallback per-map bag capacity.
	DefaultBagCapacity = 3
	// DefaultRetirementTime is the fallback inactivity threshold in seconds.
	DefaultRetirementTime = 60.0
)

// LootType is an opaque catalog entry; the core only cares about Value, but
// the rest of the JSON object is retained and republished verbatim to
// clients (extra_data passthrough, per the original catalog format).
type LootType struct {
	Value int
	Raw   json.RawMessage
}

// UnmarshalJSON decodes both the required "value" field and keeps the whole
// object around for passthrough.
func (lt *LootType) UnmarshalJSON(data []byte) error {
	var probe struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("loot type: %w", err)
	}
	lt.Value = probe.Value
	lt.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON republishes the original object unchanged.
func (lt LootType) MarshalJSON() ([]byte, error) {
	if lt.Raw != nil {
		return lt.Raw, nil
	}
	return json.Marshal(struct {
		Value int `json:"value"`
	}{Value: lt.Value})
}

// Building is a cosmetic axis-aligned rectangle; it has no collision
// contract in the core (§3).
type Building struct {
	X, Y, W, H float64
}

// Office is a positioned drop-off point identified by a string id whose
// leading character is a sigil (stripped when deriving the numeric id used
// by the collision engine, §4.5 step 3).
type Office struct {
	ID      string
	X, Y    float64
	OffsetX float64
	OffsetY float64
}

// NumericID strips the office's leading sigil character and parses the
// remainder as an integer.
func (o Office) NumericID() (uint64, error) {
	if len(o.ID) < 2 {
		return 0, fmt.Errorf("office id %q too short to contain a sigil", o.ID)
	}
	rest := o.ID[1:]
	var n uint64
	if _, err := fmt.Sscanf(rest, "%d", &n); err != nil {
		return 0, fmt.Errorf("office id %q: %w", o.ID, err)
	}
	return n, nil
}

// Position returns the office's gathering point (X,Y offset by OffsetX/Y).
func (o Office) Position() Point2D {
	return Point2D{X: o.X + o.OffsetX, Y: o.Y + o.OffsetY}
}

// Map is an immutable-after-load description of one playable map (C3).
type Map struct {
	ID   string
	Name string

	DogSpeed    float64
	BagCapacity int

	Roads     []Road
	Buildings []Building
	Offices   []Office
	LootTypes []LootType

	roadIndex *RoadIndex
}

// RoadIndex returns the map's spatial index over its roads.
func (m *Map) RoadIndex() *RoadIndex {
	return m.roadIndex
}

// LootTypeCount returns the number of entries in the loot-type catalog.
func (m *Map) LootTypeCount() int {
	return len(m.LootTypes)
}

// LootValue returns the score value of the loot type at index i.
func (m *Map) LootValue(i int) (int, error) {
	if i < 0 || i >= len(m.LootTypes) {
		return 0, fmt.Errorf("loot type index %d out of range [0,%d)", i, len(m.LootTypes))
	}
	return m.LootTypes[i].Value, nil
}

// GetRandomPointOnRoad selects a road uniformly at random, then samples
// uniformly along its integer extent (§4.3).
func (m *Map) GetRandomPointOnRoad(rng *rand.Rand) Point2D {
	r := m.Roads[rng.Intn(len(m.Roads))]
	if r.IsHorizontal() {
		lo, hi := r.Start.X, r.End.X
		if lo > hi {
			lo, hi = hi, lo
		}
		x := lo + rng.Float64()*(hi-lo)
		return Point2D{X: x, Y: r.Start.Y}
	}
	lo, hi := r.Start.Y, r.End.Y
	if lo > hi {
		lo, hi = hi, lo
	}
	y := lo + rng.Float64()*(hi-lo)
	return Point2D{X: r.Start.X, Y: y}
}

// FirstRoadStart returns the start point of the first road, used for FIX
// spawn mode (§4.4).
func (m *Map) FirstRoadStart() Point2D {
	return m.Roads[0].Start
}

// wireRoad mirrors the JSON shape of a Road entry: horizontal roads carry
// x1, vertical roads carry y1 (§6).
type wireRoad struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1,omitempty"`
	Y1 *float64 `json:"y1,omitempty"`
}

func (wr wireRoad) toRoad() (Road, error) {
	switch {
	case wr.X1 != nil && wr.Y1 == nil:
		return Road{Start: Point2D{X: wr.X0, Y: wr.Y0}, End: Point2D{X: *wr.X1, Y: wr.Y0}}, nil
	case wr.Y1 != nil && wr.X1 == nil:
		return Road{Start: Point2D{X: wr.X0, Y: wr.Y0}, End: Point2D{X: wr.X0, Y: *wr.Y1}}, nil
	default:
		return Road{}, fmt.Errorf("road must specify exactly one of x1 or y1")
	}
}

type wireBuilding struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type wireOffice struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type wireMap struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DogSpeed    *float64   `json:"dogSpeed,omitempty"`
	BagCapacity *int       `json:"bagCapacity,omitempty"`
	Roads       []wireRoad `json:"roads"`
	Buildings   []wireBuilding `json:"buildings"`
	Offices     []wireOffice   `json:"offices"`
	LootTypes   []LootType     `json:"lootTypes"`
}

// wireCatalog mirrors the top-level JSON catalog document (§6).
type wireCatalog struct {
	DefaultDogSpeed    *float64 `json:"defaultDogSpeed,omitempty"`
	DefaultBagCapacity *int     `json:"defaultBagCapacity,omitempty"`
	DogRetirementTime  *float64 `json:"dogRetirementTime,omitempty"`
	LootGeneratorConfig struct {
		Period      float64 `json:"period"`
		Probability float64 `json:"probability"`
	} `json:"lootGeneratorConfig"`
	Maps []wireMap `json:"maps"`
}

// Catalog is the fully loaded, immutable set of maps and global defaults
// parsed from a map config file (§6).
type Catalog struct {
	DefaultBagCapacity int
	RetirementTime     float64
	LootPeriodMs        float64
	LootProbability     float64

	maps    map[string]*Map
	mapList []*Map
}

// LoadCatalog parses a map config JSON document into a Catalog. Per-map
// dogSpeed/bagCapacity overrides win over the document-level defaults (the
// ordering bug flagged in the design notes: read the override BEFORE
// falling back to the default, never the reverse).
func LoadCatalog(data []byte) (*Catalog, error) {
	var wc wireCatalog
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("parse map catalog: %w", err)
	}

	defaultDogSpeed := DefaultDogSpeed
	if wc.DefaultDogSpeed != nil {
		defaultDogSpeed = *wc.DefaultDogSpeed
	}
	defaultBagCapacity := DefaultBagCapacity
	if wc.DefaultBagCapacity != nil {
		defaultBagCapacity = *wc.DefaultBagCapacity
	}
	retirementTime := DefaultRetirementTime
	if wc.DogRetirementTime != nil {
		retirementTime = *wc.DogRetirementTime
	}

	cat := &Catalog{
		DefaultBagCapacity: defaultBagCapacity,
		RetirementTime:     retirementTime,
		LootPeriodMs:        wc.LootGeneratorConfig.Period * 1000,
		LootProbability:     wc.LootGeneratorConfig.Probability,
		maps:                make(map[string]*Map, len(wc.Maps)),
	}

	for _, wm := range wc.Maps {
		if _, exists := cat.maps[wm.ID]; exists {
			return nil, fmt.Errorf("duplicate map id %q", wm.ID)
		}

		m := &Map{
			ID:          wm.ID,
			Name:        wm.Name,
			DogSpeed:    defaultDogSpeed,
			BagCapacity: defaultBagCapacity,
			LootTypes:   wm.LootTypes,
		}
		if wm.DogSpeed != nil {
			m.DogSpeed = *wm.DogSpeed
		}
		if wm.BagCapacity != nil {
			m.BagCapacity = *wm.BagCapacity
		}

		for _, wr := range wm.Roads {
			r, err := wr.toRoad()
			if err != nil {
				return nil, fmt.Errorf("map %q: %w", wm.ID, err)
			}
			m.Roads = append(m.Roads, r)
		}
		if len(m.Roads) == 0 {
			return nil, fmt.Errorf("map %q: at least one road is required", wm.ID)
		}

		for _, wb := range wm.Buildings {
			m.Buildings = append(m.Buildings, Building{X: wb.X, Y: wb.Y, W: wb.W, H: wb.H})
		}
		for _, wo := range wm.Offices {
			m.Offices = append(m.Offices, Office{
				ID: wo.ID, X: wo.X, Y: wo.Y, OffsetX: wo.OffsetX, OffsetY: wo.OffsetY,
			})
		}

		m.roadIndex = NewRoadIndex(m.Roads)

		cat.maps[m.ID] = m
		cat.mapList = append(cat.mapList, m)
	}

	return cat, nil
}

// FindMap returns the map with the given id, or nil if not found (§4.3).
func (c *Catalog) FindMap(id string) *Map {
	return c.maps[id]
}

// Maps returns every loaded map in catalog order.
func (c *Catalog) Maps() []*Map {
	return c.mapList
}
