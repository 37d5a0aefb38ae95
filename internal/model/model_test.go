package model

import (
	"math/rand"
	"testing"
)

func straightMap(t *testing.T) *Map {
	t.Helper()
	roads := []Road{NewHorizontalRoad(Point{0, 0}, 10)}
	offices := []Office{{ID: "o1", Position: Point{10, 0}}}
	loot := []LootType{{Name: "key", Value: 7}}
	m, err := NewMap("m", "Test Map", roads, nil, offices, loot, 2, 3, 60)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

func TestNewMapRequiresRoadAndLoot(t *testing.T) {
	if _, err := NewMap("m", "", nil, nil, nil, []LootType{{Name: "a"}}, 1, 1, 1); err == nil {
		t.Fatal("expected error for empty road set")
	}
	roads := []Road{NewHorizontalRoad(Point{0, 0}, 1)}
	if _, err := NewMap("m", "", roads, nil, nil, nil, 1, 1, 1); err == nil {
		t.Fatal("expected error for empty loot types")
	}
}

func TestFitPositionToRoadClampsAtDeadEnd(t *testing.T) {
	m := straightMap(t)
	current := Position{X: 9, Y: 0}
	attempted := Position{X: 12, Y: 0}
	got := m.FitPositionToRoad(current, attempted)
	want := 10 + RoadHalfWidth
	if got.X != want || got.Y != 0 {
		t.Fatalf("expected clamp to (%v,0), got %+v", want, got)
	}
}

func TestFitPositionToRoadPrefersDominantAxis(t *testing.T) {
	roads := []Road{
		NewHorizontalRoad(Point{0, 0}, 10),
		NewVerticalRoad(Point{0, 0}, 10),
	}
	m, err := NewMap("m", "", roads, nil, nil, []LootType{{Name: "a"}}, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	// Moving mostly along X from the junction (0,0) should stay clamped by
	// the horizontal road's Y bounds, not the vertical road's.
	got := m.FitPositionToRoad(Position{0, 0}, Position{X: 3, Y: 2})
	if got.Y > RoadHalfWidth {
		t.Fatalf("expected Y clamped to road half width, got %+v", got)
	}
}

func TestFitPositionToRoadNoRoadReturnsCurrent(t *testing.T) {
	m := straightMap(t)
	current := Position{X: 100, Y: 100}
	got := m.FitPositionToRoad(current, Position{X: 200, Y: 200})
	if got != current {
		t.Fatalf("expected unchanged current position, got %+v", got)
	}
}

func TestRandomPositionIsOnARoad(t *testing.T) {
	m := straightMap(t)
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		p := m.RandomPosition(rnd)
		if p.X < 0 || p.X > 10 || p.Y != 0 {
			t.Fatalf("random position off road: %+v", p)
		}
	}
}

func TestGameAddAndFindMap(t *testing.T) {
	g := NewGame()
	m := straightMap(t)
	if err := g.AddMap(m); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	if err := g.AddMap(m); err == nil {
		t.Fatal("expected duplicate id error")
	}
	found, ok := g.FindMap("m")
	if !ok || found != m {
		t.Fatal("FindMap did not return the registered map")
	}
	if len(g.Maps()) != 1 {
		t.Fatalf("expected 1 map, got %d", len(g.Maps()))
	}
}

func TestLoadGameParsesSchema(t *testing.T) {
	data := []byte(`{
		"defaultDogSpeed": 3,
		"defaultBagCapacity": 3,
		"dogRetirementTime": 60,
		"lootGeneratorConfig": {"period": 5, "probability": 0.5},
		"maps": [{
			"id": "map1",
			"name": "First",
			"roads": [{"x0": 0, "y0": 0, "x1": 10}],
			"buildings": [{"x": 1, "y": 1, "w": 2, "h": 2}],
			"offices": [{"id": "o1", "x": 10, "y": 0, "offsetX": 0, "offsetY": 1}],
			"lootTypes": [{"name": "key", "value": 10}]
		}]
	}`)
	game, lootCfg, err := LoadGame(data)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if lootCfg.PeriodSeconds != 5 || lootCfg.Probability != 0.5 {
		t.Fatalf("unexpected loot config: %+v", lootCfg)
	}
	m, ok := game.FindMap("map1")
	if !ok {
		t.Fatal("map1 not loaded")
	}
	if m.DogSpeed != 3 || m.BagCapacity != 3 {
		t.Fatalf("unexpected map tunables: %+v", m)
	}
	if len(m.Offices) != 1 || len(m.Buildings) != 1 || len(m.LootTypes) != 1 {
		t.Fatalf("unexpected counts on loaded map: %+v", m)
	}
}

func TestLoadGameRejectsMissingRoadEndpoint(t *testing.T) {
	data := []byte(`{"lootGeneratorConfig":{"period":1,"probability":1},"maps":[{"id":"m","roads":[{"x0":0,"y0":0}],"lootTypes":[{"name":"a","value":1}]}]}`)
	if _, _, err := LoadGame(data); err == nil {
		t.Fatal("expected error for road missing x1/y1")
	}
}
