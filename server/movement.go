package server

import "math"

// motionEpsilon is the minimum speed magnitude treated as "moving" (§4.5.1).
const motionEpsilon = 1e-9

// UpdatePosition computes a dog's new position after Δt seconds of travel
// at its current velocity, constrained to the road network (§4.5.1).
// Mirrors the original Game::CalculateNewDogPosition/FindStopPoint pair,
// with the intersection fix from the design notes: any candidate road
// containing P is eligible when computing the stop point, not just the one
// road nominally "owning" the segment.
//
// hitWall reports whether the road-boundary clamp branch fired, i.e. the
// dog traveled as far as the road network allows but was still short of
// its unconstrained target; the caller must zero velocity in that case
// (§4.5.1), independent of whether the dog moved at all this tick.
func UpdatePosition(idx *RoadIndex, pos Point2D, vel Vec2D, dir Direction, dtSeconds float64) (next Point2D, hitWall bool) {
	if dir == DirNone || vel.Len() < motionEpsilon {
		return pos, false
	}

	target := pos.Add(vel.Scale(dtSeconds))
	candidates := idx.QuerySegmentOrPoint(pos, target)

	var roadsContainingP []Road
	for _, r := range candidates {
		if r.OnRoad(pos) {
			roadsContainingP = append(roadsContainingP, r)
		}
	}
	if len(roadsContainingP) == 0 {
		return pos, false
	}

	for _, r := range candidates {
		if r.OnRoad(target) {
			return target, false
		}
	}

	return findStopPoint(roadsContainingP, pos, dir), true
}

// findStopPoint returns, among roads containing P, the farthest point
// reachable along direction d while staying within that road's half-width
// band, choosing the candidate that maximizes distance traveled from P
// (§4.5.1).
func findStopPoint(roads []Road, p Point2D, d Direction) Point2D {
	var best Point2D
	bestSqDist := -1.0
	found := false

	for _, r := range roads {
		candidate := farthestPointOnRoad(r, p, d)
		sq := SqDistance(p, candidate)
		if sq > bestSqDist {
			bestSqDist = sq
			best = candidate
			found = true
		}
	}

	if !found {
		return p
	}
	return best
}

// farthestPointOnRoad returns the farthest point along direction d from p
// that stays within road r's half-width band.
func farthestPointOnRoad(r Road, p Point2D, d Direction) Point2D {
	if r.IsHorizontal() {
		minX := math.Min(r.Start.X, r.End.X) - ROAD_HALF_WIDTH
		maxX := math.Max(r.Start.X, r.End.X) + ROAD_HALF_WIDTH
		switch d {
		case DirEast:
			return Point2D{X: maxX, Y: p.Y}
		case DirWest:
			return Point2D{X: minX, Y: p.Y}
		case DirNorth:
			// North/south travel on a horizontal road is bounded by the
			// road's own half-width band around its centerline.
			return Point2D{X: p.X, Y: r.Start.Y - ROAD_HALF_WIDTH}
		default:
			return Point2D{X: p.X, Y: r.Start.Y + ROAD_HALF_WIDTH}
		}
	}

	minY := math.Min(r.Start.Y, r.End.Y) - ROAD_HALF_WIDTH
	maxY := math.Max(r.Start.Y, r.End.Y) + ROAD_HALF_WIDTH
	switch d {
	case DirSouth:
		return Point2D{X: p.X, Y: maxY}
	case DirNorth:
		return Point2D{X: p.X, Y: minY}
	case DirWest:
		return Point2D{X: r.Start.X - ROAD_HALF_WIDTH, Y: p.Y}
	default:
		return Point2D{X: r.Start.X + ROAD_HALF_WIDTH, Y: p.Y}
	}
}

// OnAnyRoad reports whether p lies on at least one of the given roads
// (testable property #1, §8).
func OnAnyRoad(roads []Road, p Point2D) bool {
	for _, r := range roads {
		if r.OnRoad(p) {
			return true
		}
	}
	return false
}
