package server

import "github.com/google/uuid"

// Direction is a dog's facing direction; NONE means stationary.
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirSouth
	DirWest
	DirEast
)

// String renders the compact single-letter form used on the wire.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "U"
	case DirSouth:
		return "D"
	case DirWest:
		return "L"
	case DirEast:
		return "R"
	default:
		return ""
	}
}

// DirectionFromMove parses the wire move code ("U","D","L","R","") into a
// Direction, reporting false for anything else.
func DirectionFromMove(move string) (Direction, bool) {
	switch move {
	case "U":
		return DirNorth, true
	case "D":
		return DirSouth, true
	case "L":
		return DirWest, true
	case "R":
		return DirEast, true
	case "":
		return DirNone, true
	default:
		return 0, false
	}
}

// Velocity returns the unit velocity vector for a direction at the given
// speed; DirNone yields the zero vector.
func (d Direction) Velocity(speed float64) Vec2D {
	switch d {
	case DirNorth:
		return Vec2D{X: 0, Y: -speed}
	case DirSouth:
		return Vec2D{X: 0, Y: speed}
	case DirWest:
		return Vec2D{X: -speed, Y: 0}
	case DirEast:
		return Vec2D{X: speed, Y: 0}
	default:
		return Vec2D{}
	}
}

// DogStatus tracks whether a dog has moved recently enough to avoid
// retirement (§3).
type DogStatus int

const (
	DogActive DogStatus = iota
	DogInactive
)

// Dog is a player-controlled avatar, mutable and owned by exactly one
// session (§3).
type Dog struct {
	ID   uint64
	UUID uuid.UUID
	Name string

	Position  Point2D
	Velocity  Vec2D
	Direction Direction

	Bag   []Loot
	Score int

	JoinTimeMs      int64
	InactivityTime  float64
	Status          DogStatus
}

// NewDog constructs a dog at the given spawn point with a freshly minted
// UUID and the join time recorded against the simulation clock.
func NewDog(id uint64, name string, spawn Point2D, joinTimeMs int64) *Dog {
	return &Dog{
		ID:         id,
		UUID:       uuid.New(),
		Name:       name,
		Position:   spawn,
		Direction:  DirNone,
		JoinTimeMs: joinTimeMs,
		Status:     DogActive,
	}
}

// BagFull reports whether the dog's bag has reached the given capacity.
func (d *Dog) BagFull(capacity int) bool {
	return len(d.Bag) >= capacity
}

// ReleaseLoot empties the bag, adding the sum of its item values to score
// (§4.5 step 4, office branch).
func (d *Dog) ReleaseLoot() (itemCount, scoreDelta int) {
	itemCount = len(d.Bag)
	for _, l := range d.Bag {
		scoreDelta += l.Value
	}
	d.Score += scoreDelta
	d.Bag = nil
	return itemCount, scoreDelta
}
