package server

// GameSession is bound to one Map and owns a list of live Dogs and free
// Loot (§3).
type GameSession struct {
	ID  uint64
	Map *Map

	Dogs []*Dog
	Loot []Loot
}

// NewGameSession constructs an empty session bound to m.
func NewGameSession(id uint64, m *Map) *GameSession {
	return &GameSession{ID: id, Map: m}
}

// AddDog appends dog to the session's live dog list.
func (s *GameSession) AddDog(d *Dog) {
	s.Dogs = append(s.Dogs, d)
}

// RemoveDogByID removes the dog with the given id from the session, if
// present.
func (s *GameSession) RemoveDogByID(id uint64) {
	for i, d := range s.Dogs {
		if d.ID == id {
			s.Dogs = append(s.Dogs[:i], s.Dogs[i+1:]...)
			return
		}
	}
}

// FindLootIndex returns the index of the free loot item with the given id,
// or -1 if it is not present (it may have already been swept by another
// gatherer this tick).
func (s *GameSession) FindLootIndex(id uint64) int {
	for i, l := range s.Loot {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// RemoveLootAt removes and returns the free loot item at index i.
func (s *GameSession) RemoveLootAt(i int) Loot {
	l := s.Loot[i]
	s.Loot = append(s.Loot[:i], s.Loot[i+1:]...)
	return l
}

// AddLoot appends a newly spawned loot item to the session's free list.
func (s *GameSession) AddLoot(l Loot) {
	s.Loot = append(s.Loot, l)
}
