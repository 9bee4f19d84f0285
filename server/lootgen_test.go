package server

import (
	"math/rand"
	"testing"
)

func TestLootGenerator_RespectsUpperBound(t *testing.T) {
	lg := NewLootGenerator(1000, 1.0, rand.New(rand.NewSource(1)))
	n := lg.NextCount(3, 5, 1000)
	if n > 2 {
		t.Errorf("expected at most G-L=2 new items, got %d", n)
	}
}

func TestLootGenerator_NoCapacityWhenFull(t *testing.T) {
	lg := NewLootGenerator(1000, 1.0, rand.New(rand.NewSource(1)))
	n := lg.NextCount(5, 5, 1000)
	if n != 0 {
		t.Errorf("expected 0 when free loot already equals dog count, got %d", n)
	}
}

func TestLootGenerator_ZeroProbabilityProducesNothing(t *testing.T) {
	lg := NewLootGenerator(1000, 0, rand.New(rand.NewSource(1)))
	n := lg.NextCount(0, 10, 1000)
	if n != 0 {
		t.Errorf("expected 0 with probability 0, got %d", n)
	}
}

func TestLootGenerator_NeverNegative(t *testing.T) {
	lg := NewLootGenerator(1000, 0.5, rand.New(rand.NewSource(1)))
	n := lg.NextCount(20, 5, 1000)
	if n < 0 {
		t.Errorf("expected non-negative count, got %d", n)
	}
}
