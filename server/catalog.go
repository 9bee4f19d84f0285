package server

import (
	"math/rand"
	"sync"

	"dogwalk/logging"
)

// SpawnMode selects how a newly joined dog's starting position is chosen
// (§4.4).
type SpawnMode int

const (
	SpawnFix SpawnMode = iota
	SpawnRandom
)

// Counters is the process-wide monotonic id registry (§9 "Global
// counters"). It is injected rather than global so that LoadState can
// restore it to a saved watermark before new allocations resume.
type Counters struct {
	mu               sync.Mutex
	nextDogID        uint64
	nextLootID       uint64
	nextSessionID    uint64
	nextPlayerID     uint64
}

func (c *Counters) NextDogID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextDogID++
	return c.nextDogID
}

func (c *Counters) NextLootID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextLootID++
	return c.nextLootID
}

func (c *Counters) NextSessionID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSessionID++
	return c.nextSessionID
}

func (c *Counters) NextPlayerID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextPlayerID++
	return c.nextPlayerID
}

// Watermarks returns the current high-water values, used when serializing
// a checkpoint (§4.6).
func (c *Counters) Watermarks() (dog, loot, session, player uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextDogID, c.nextLootID, c.nextSessionID, c.nextPlayerID
}

// RestoreWatermarks advances the counters to at least the saved values, so
// that ids allocated after a LoadState never collide with restored ones
// (§4.6).
func (c *Counters) RestoreWatermarks(dog, loot, session, player uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dog > c.nextDogID {
		c.nextDogID = dog
	}
	if loot > c.nextLootID {
		c.nextLootID = loot
	}
	if session > c.nextSessionID {
		c.nextSessionID = session
	}
	if player > c.nextPlayerID {
		c.nextPlayerID = player
	}
}

// Game owns the immutable Catalog of maps, the live sessions (one per
// mapID), the process-wide player list, and the global counters (C3+C4).
// All mutation is expected to happen on the strand (C9); Game itself does
// not lock beyond what Counters needs for safe concurrent id allocation.
type Game struct {
	Catalog  *Catalog
	Counters *Counters

	SpawnMode SpawnMode
	rng       *rand.Rand
	lootGen   *LootGenerator

	Clock *Clock

	Records         RecordsStore
	Publisher       logging.Publisher
	CheckpointStore CheckpointStore
	SaveIntervalMs  float64
	saveTimerMs     float64

	sessions map[string]*GameSession
	players  []*Player
}

// NewGame constructs a Game bound to the given catalog. rng drives loot
// generation and RANDOM spawn placement; callers wanting deterministic
// tests should pass a seeded source.
func NewGame(catalog *Catalog, spawnMode SpawnMode, rng *rand.Rand) *Game {
	return &Game{
		Catalog:   catalog,
		lootGen:   NewLootGenerator(catalog.LootPeriodMs, catalog.LootProbability, rng),
		Counters:  &Counters{},
		SpawnMode: spawnMode,
		rng:       rng,
		sessions:  make(map[string]*GameSession),
	}
}

// FindMap delegates to the catalog (§4.3).
func (g *Game) FindMap(id string) *Map {
	return g.Catalog.FindMap(id)
}

// AddDogToSession creates the session for mapID if one doesn't already
// exist, appends dog, and returns the session (§4.4).
func (g *Game) AddDogToSession(dog *Dog, mapID string) *GameSession {
	sess, ok := g.sessions[mapID]
	if !ok {
		m := g.FindMap(mapID)
		sess = NewGameSession(g.Counters.NextSessionID(), m)
		g.sessions[mapID] = sess
	}
	sess.AddDog(dog)
	return sess
}

// SessionForMap returns the live session for mapID, or nil if none exists
// yet.
func (g *Game) SessionForMap(mapID string) *GameSession {
	return g.sessions[mapID]
}

// Sessions returns every live session, in no particular order.
func (g *Game) Sessions() []*GameSession {
	out := make([]*GameSession, 0, len(g.sessions))
	for _, s := range g.sessions {
		out = append(out, s)
	}
	return out
}

// spawnPoint chooses a dog's starting position according to SpawnMode
// (§4.4): FIX uses the start of the first road, RANDOM samples uniformly
// along the road network.
func (g *Game) spawnPoint(m *Map) Point2D {
	if g.SpawnMode == SpawnRandom {
		return m.GetRandomPointOnRoad(g.rng)
	}
	return m.FirstRoadStart()
}
