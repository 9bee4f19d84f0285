package server

import (
	"math/rand"
	"testing"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return NewGame(cat, SpawnFix, rand.New(rand.NewSource(1)))
}

func TestJoinGame_SpawnsAndRegisters(t *testing.T) {
	g := newTestGame(t)

	player, dog, err := g.JoinGame("alice", "map1", 0)
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if !IsValidTokenShape(player.Token) {
		t.Errorf("expected valid token shape, got %q", player.Token)
	}
	if dog.Position != (Point2D{X: 0, Y: 0}) {
		t.Errorf("expected FIX spawn at first road start, got %+v", dog.Position)
	}

	found := g.FindPlayerByToken(player.Token)
	if found != player {
		t.Errorf("FindPlayerByToken did not find the joined player")
	}
}

func TestJoinGame_UnknownMap(t *testing.T) {
	g := newTestGame(t)
	_, _, err := g.JoinGame("alice", "nonexistent", 0)
	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.Kind != ErrMapNotFound {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestFindPlayersInSession(t *testing.T) {
	g := newTestGame(t)
	p1, _, _ := g.JoinGame("alice", "map1", 0)
	p2, _, _ := g.JoinGame("bob", "map1", 0)
	p3, _, _ := g.JoinGame("carol", "map2", 0)

	inSession := g.FindPlayersInSession(p1.Token)
	if len(inSession) != 2 {
		t.Fatalf("expected 2 players in map1's session, got %d", len(inSession))
	}
	for _, p := range inSession {
		if p.ID == p3.ID {
			t.Error("player from a different session leaked into FindPlayersInSession")
		}
	}
	_ = p2
}

func TestRemovePlayerByDogID(t *testing.T) {
	g := newTestGame(t)
	player, dog, _ := g.JoinGame("alice", "map1", 0)

	g.RemovePlayerByDogID(dog.ID)

	if g.FindPlayerByToken(player.Token) != nil {
		t.Error("expected player to be removed")
	}
	sess := g.SessionForMap("map1")
	for _, d := range sess.Dogs {
		if d.ID == dog.ID {
			t.Error("expected dog to be removed from session")
		}
	}
}
