package server

import (
	"math"
	"testing"
)

func TestUpdatePosition_StaysOnRoad(t *testing.T) {
	roads := []Road{{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}}}
	idx := NewRoadIndex(roads)

	got, hitWall := UpdatePosition(idx, Point2D{X: 2, Y: 0}, Vec2D{X: 1, Y: 0}, DirEast, 1)
	want := Point2D{X: 3, Y: 0}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if hitWall {
		t.Errorf("expected no wall hit mid-road")
	}
}

// TestUpdatePosition_ClampsAtWall covers spec example S2: a dog at
// (9.5,0) moving east at speed 2 for Δt=1s ends the tick at (10.4,0) with
// hitWall reported so the caller can zero velocity, even though the dog
// traveled most of the way to the wall rather than starting there.
func TestUpdatePosition_ClampsAtWall(t *testing.T) {
	roads := []Road{{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}}}
	idx := NewRoadIndex(roads)

	got, hitWall := UpdatePosition(idx, Point2D{X: 9.5, Y: 0}, Vec2D{X: 2, Y: 0}, DirEast, 1)
	want := Point2D{X: 10.4, Y: 0}
	const eps = 1e-9
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !hitWall {
		t.Errorf("expected hitWall to be reported when the road boundary is reached")
	}
}

func TestUpdatePosition_NoMotionWhenDirNone(t *testing.T) {
	roads := []Road{{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}}}
	idx := NewRoadIndex(roads)

	got, hitWall := UpdatePosition(idx, Point2D{X: 3, Y: 0}, Vec2D{X: 1, Y: 0}, DirNone, 1)
	if got != (Point2D{X: 3, Y: 0}) {
		t.Errorf("expected no movement, got %+v", got)
	}
	if hitWall {
		t.Errorf("expected no wall hit when not moving")
	}
}

func TestUpdatePosition_CrossesIntersection(t *testing.T) {
	roads := []Road{
		{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}},
		{Start: Point2D{X: 5, Y: 0}, End: Point2D{X: 5, Y: 10}},
	}
	idx := NewRoadIndex(roads)

	got, hitWall := UpdatePosition(idx, Point2D{X: 5, Y: 0}, Vec2D{X: 0, Y: 1}, DirSouth, 3)
	want := Point2D{X: 5, Y: 3}
	if got != want {
		t.Errorf("expected to travel onto the vertical road, got %+v want %+v", got, want)
	}
	if hitWall {
		t.Errorf("expected no wall hit when crossing onto another road")
	}
}

func TestUpdatePosition_OffRoadDefensive(t *testing.T) {
	roads := []Road{{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 10, Y: 0}}}
	idx := NewRoadIndex(roads)

	stuck := Point2D{X: 100, Y: 100}
	got, hitWall := UpdatePosition(idx, stuck, Vec2D{X: 1, Y: 0}, DirEast, 1)
	if got != stuck {
		t.Errorf("expected dog off all roads to stay put, got %+v", got)
	}
	if hitWall {
		t.Errorf("expected no wall hit when off the road network entirely")
	}
}
