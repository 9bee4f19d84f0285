package server

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	g := NewGame(cat, SpawnFix, rand.New(rand.NewSource(1)))
	g.Clock = NewTestClock()
	return NewHub(g)
}

func TestHub_JoinThenAction(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	player, _, err := h.Join(context.Background(), "alice", "map1")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := h.Action(context.Background(), player.Token, DirEast); err != nil {
		t.Fatalf("Action: %v", err)
	}

	var dog *Dog
	if err := h.Snapshot(context.Background(), func() {
		p := h.Game.FindPlayerByToken(player.Token)
		dog = h.Game.DogForPlayer(p)
	}); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if dog.Direction != DirEast {
		t.Errorf("expected direction east, got %v", dog.Direction)
	}
}

func TestHub_TickAdvancesTestClock(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	if err := h.Tick(context.Background(), 1000); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if h.Game.Clock.NowMs() != 1000 {
		t.Errorf("expected clock at 1000ms, got %d", h.Game.Clock.NowMs())
	}
}

func TestHub_TickRejectedInNormalMode(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	g := NewGame(cat, SpawnFix, rand.New(rand.NewSource(1)))
	g.Clock = NewNormalClock(time.Now())
	h := NewHub(g)
	defer h.Close()

	err = h.Tick(context.Background(), 1000)
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.Kind != ErrBadRequest {
		t.Fatalf("expected ErrBadRequest in NORMAL mode, got %v", err)
	}
}

func TestHub_SerializesConcurrentJoins(t *testing.T) {
	h := newTestHub(t)
	defer h.Close()

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := h.Join(context.Background(), "player", "map1")
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected join error: %v", err)
		}
	}

	var playerCount int
	if err := h.Snapshot(context.Background(), func() {
		playerCount = len(h.Game.Players())
	}); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if playerCount != n {
		t.Errorf("expected %d players, got %d", n, playerCount)
	}
}
