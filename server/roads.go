package server

import "math"

// ROAD_HALF_WIDTH is the walkable strip extending on either side of a road's centerline.
const ROAD_HALF_WIDTH = 0.4

// Road is an axis-aligned horizontal or vertical segment defined by integer
// grid endpoints. For a horizontal road Start.Y == End.Y; for a vertical
// road Start.X == End.X.
type Road struct {
	Start Point2D
	End   Point2D
}

// IsHorizontal reports whether the road runs along the X axis.
func (r Road) IsHorizontal() bool {
	return r.Start.Y == r.End.Y
}

// IsVertical reports whether the road runs along the Y axis.
func (r Road) IsVertical() bool {
	return r.Start.X == r.End.X
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Intersects reports whether b overlaps other.
func (b Box) Intersects(other Box) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// Contains reports whether p lies within b.
func (b Box) Contains(p Point2D) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// BoundingBox returns the road's bounding box, padded by ROAD_HALF_WIDTH on
// every side (§4.1).
func (r Road) BoundingBox() Box {
	minX := math.Min(r.Start.X, r.End.X) - ROAD_HALF_WIDTH
	maxX := math.Max(r.Start.X, r.End.X) + ROAD_HALF_WIDTH
	minY := math.Min(r.Start.Y, r.End.Y) - ROAD_HALF_WIDTH
	maxY := math.Max(r.Start.Y, r.End.Y) + ROAD_HALF_WIDTH
	return Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// OnRoad reports whether p lies within the road's half-width band, with
// endpoint caps extended by ROAD_HALF_WIDTH (§4.5.1).
func (r Road) OnRoad(p Point2D) bool {
	if r.IsHorizontal() {
		minX := math.Min(r.Start.X, r.End.X) - ROAD_HALF_WIDTH
		maxX := math.Max(r.Start.X, r.End.X) + ROAD_HALF_WIDTH
		return p.X >= minX && p.X <= maxX &&
			p.Y >= r.Start.Y-ROAD_HALF_WIDTH && p.Y <= r.Start.Y+ROAD_HALF_WIDTH
	}
	minY := math.Min(r.Start.Y, r.End.Y) - ROAD_HALF_WIDTH
	maxY := math.Max(r.Start.Y, r.End.Y) + ROAD_HALF_WIDTH
	return p.Y >= minY && p.Y <= maxY &&
		p.X >= r.Start.X-ROAD_HALF_WIDTH && p.X <= r.Start.X+ROAD_HALF_WIDTH
}

// roadIndexCellSize determines the grid bucket size used by RoadIndex. Roads
// are typically laid out on a small integer grid, so a cell comparable to a
// couple of road segments keeps bucket occupancy low without the bookkeeping
// overhead of a full R-tree (see SPEC_FULL.md "Open Question decisions").
const roadIndexCellSize = 8.0

type roadCellKey struct {
	cx, cy int
}

// RoadIndex answers "which roads could a move from A to B, or a point at A,
// touch" queries over a fixed set of roads. It returns a superset; callers
// filter with Road.OnRoad for exact containment (§4.1).
type RoadIndex struct {
	roads []Road
	cells map[roadCellKey][]int
}

// NewRoadIndex builds a grid-bucketed spatial index over roads.
func NewRoadIndex(roads []Road) *RoadIndex {
	idx := &RoadIndex{
		roads: roads,
		cells: make(map[roadCellKey][]int),
	}
	for i, r := range roads {
		box := r.BoundingBox()
		idx.insert(i, box)
	}
	return idx
}

func (idx *RoadIndex) insert(roadIdx int, box Box) {
	minCX := int(math.Floor(box.MinX / roadIndexCellSize))
	maxCX := int(math.Floor(box.MaxX / roadIndexCellSize))
	minCY := int(math.Floor(box.MinY / roadIndexCellSize))
	maxCY := int(math.Floor(box.MaxY / roadIndexCellSize))
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			key := roadCellKey{cx, cy}
			idx.cells[key] = append(idx.cells[key], roadIdx)
		}
	}
}

// QuerySegmentOrPoint returns the (deduplicated) set of roads whose bounding
// box intersects the segment from..to, or contains the point `from`.
func (idx *RoadIndex) QuerySegmentOrPoint(from, to Point2D) []Road {
	segBox := Box{
		MinX: math.Min(from.X, to.X),
		MaxX: math.Max(from.X, to.X),
		MinY: math.Min(from.Y, to.Y),
		MaxY: math.Max(from.Y, to.Y),
	}
	minCX := int(math.Floor(segBox.MinX / roadIndexCellSize))
	maxCX := int(math.Floor(segBox.MaxX / roadIndexCellSize))
	minCY := int(math.Floor(segBox.MinY / roadIndexCellSize))
	maxCY := int(math.Floor(segBox.MaxY / roadIndexCellSize))

	seen := make(map[int]struct{})
	var out []Road
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, ri := range idx.cells[roadCellKey{cx, cy}] {
				if _, ok := seen[ri]; ok {
					continue
				}
				box := idx.roads[ri].BoundingBox()
				if box.Intersects(segBox) || box.Contains(from) {
					seen[ri] = struct{}{}
					out = append(out, idx.roads[ri])
				}
			}
		}
	}
	return out
}

// Roads returns the full road list backing the index.
func (idx *RoadIndex) Roads() []Road {
	return idx.roads
}
