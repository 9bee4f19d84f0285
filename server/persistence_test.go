package server

import (
	"math/rand"
	"path/filepath"
	"testing"
)

func TestSaveLoadState_RoundTrip(t *testing.T) {
	cat, err := LoadCatalog([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	g := NewGame(cat, SpawnFix, rand.New(rand.NewSource(1)))
	dir := t.TempDir()
	g.CheckpointStore = NewFileCheckpointStore(filepath.Join(dir, "state.bin"))

	player, dog, err := g.JoinGame("alice", "map1", 1000)
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	dog.Position = Point2D{X: 4, Y: 0}
	dog.Velocity = Vec2D{X: 1, Y: 0}
	dog.Score = 12
	sess := g.SessionForMap("map1")
	sess.AddLoot(Loot{ID: 500, TypeID: 0, Value: 3, Position: Point2D{X: 2, Y: 0}})

	if err := g.SaveState(); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	g2 := NewGame(cat, SpawnFix, rand.New(rand.NewSource(2)))
	g2.CheckpointStore = g.CheckpointStore
	if err := g2.LoadState(); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	restoredSess := g2.SessionForMap("map1")
	if restoredSess == nil {
		t.Fatal("expected map1 session to be restored")
	}
	if len(restoredSess.Dogs) != 1 {
		t.Fatalf("expected 1 restored dog, got %d", len(restoredSess.Dogs))
	}
	restoredDog := restoredSess.Dogs[0]
	if restoredDog.Position != dog.Position || restoredDog.Velocity != dog.Velocity || restoredDog.Score != dog.Score {
		t.Errorf("dog state mismatch: got %+v want pos=%+v vel=%+v score=%d", restoredDog, dog.Position, dog.Velocity, dog.Score)
	}
	if len(restoredSess.Loot) != 1 || restoredSess.Loot[0].ID != 500 {
		t.Errorf("free loot not restored correctly: %+v", restoredSess.Loot)
	}

	restoredPlayer := g2.FindPlayerByToken(player.Token)
	if restoredPlayer == nil {
		t.Fatal("expected player to be restored")
	}
	if restoredPlayer.DogID != dog.ID || restoredPlayer.SessionID != sess.ID {
		t.Errorf("player back-references not restored: %+v", restoredPlayer)
	}

	dogWM, lootWM, sessionWM, playerWM := g2.Counters.Watermarks()
	origDogWM, origLootWM, origSessionWM, origPlayerWM := g.Counters.Watermarks()
	if dogWM != origDogWM || lootWM != origLootWM || sessionWM != origSessionWM || playerWM != origPlayerWM {
		t.Errorf("counters not restored to watermark: got (%d,%d,%d,%d) want (%d,%d,%d,%d)",
			dogWM, lootWM, sessionWM, playerWM, origDogWM, origLootWM, origSessionWM, origPlayerWM)
	}
}
