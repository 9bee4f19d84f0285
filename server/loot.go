package server

// Loot is a stationary pickup owned by a session until it is gathered into
// a Dog's bag (§3).
type Loot struct {
	ID       uint64
	TypeID   int
	Value    int
	Position Point2D
}

// Width is always LOOT_WIDTH for loot items.
func (l Loot) Width() float64 {
	return LOOT_WIDTH
}
