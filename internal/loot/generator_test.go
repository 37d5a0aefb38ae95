package loot

import "testing"

func TestGenerateNoShortageReturnsZero(t *testing.T) {
	g := NewGenerator(Config{Period: 0, Probability: 1})
	if n := g.Generate(0, 2, 2); n != 0 {
		t.Fatalf("expected 0 with no shortage, got %d", n)
	}
}

func TestGenerateNeverExceedsShortage(t *testing.T) {
	g := NewGenerator(Config{Period: 1, Probability: 1})
	n := g.Generate(100, 10, 0)
	if n > 10 {
		t.Fatalf("generated %d, want <= 10 (shortage)", n)
	}
	if n <= 0 {
		t.Fatalf("expected some items generated with ample accumulated time, got %d", n)
	}
}

func TestGenerateResetsAccumulatorOnlyWhenPositive(t *testing.T) {
	g := NewGenerator(Config{Period: 10, Probability: 0.0})
	// probability 0 => n always 0, accumulator keeps growing
	g.Generate(5, 5, 0)
	n := g.Generate(5, 5, 0)
	if n != 0 {
		t.Fatalf("expected 0 with zero probability, got %d", n)
	}
	if g.timeWithoutLoot != 10 {
		t.Fatalf("expected accumulator to keep both deltas (10), got %v", g.timeWithoutLoot)
	}
}

func TestGenerateZeroPeriodDoesNotPanic(t *testing.T) {
	g := NewGenerator(Config{Period: 0, Probability: 0.5})
	if n := g.Generate(5, 5, 0); n != 0 {
		t.Fatalf("expected 0 for zero period, got %d", n)
	}
}
