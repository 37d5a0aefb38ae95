package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wannabeanything/dogwalker/internal/loot"
	"github.com/wannabeanything/dogwalker/internal/model"
	"github.com/wannabeanything/dogwalker/internal/players"
	"github.com/wannabeanything/dogwalker/internal/snapshot"
)

func testGame(t *testing.T) *model.Game {
	t.Helper()
	roads := []model.Road{model.NewHorizontalRoad(model.Point{X: 0, Y: 0}, 10)}
	offices := []model.Office{{ID: "o1", Position: model.Point{X: 10, Y: 0}}}
	lootTypes := []model.LootType{{Name: "key", Value: 7}}
	m, err := model.NewMap("m1", "Test Map", roads, nil, offices, lootTypes, 2, 3, 60)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	g := model.NewGame()
	if err := g.AddMap(m); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	return g
}

type fakeRecorder struct {
	mu    sync.Mutex
	saved []string
}

func (f *fakeRecorder) SaveRecord(name string, score int, playTimeSeconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, name)
	return nil
}

func newTestWorld(t *testing.T) (*World, context.Context, context.CancelFunc) {
	t.Helper()
	w := NewWorld(Options{
		Game:       testGame(t),
		LootConfig: loot.Config{Period: 0, Probability: 0},
		Recorder:   &fakeRecorder{},
	})
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	return w, ctx, cancel
}

func TestJoinAndPlayers(t *testing.T) {
	w, _, cancel := newTestWorld(t)
	defer cancel()

	tok, dogID, err := w.Join("m1", "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}

	ps, err := w.Players(string(tok))
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if len(ps) != 1 || ps[0].DogID != dogID || ps[0].Name != "Alice" {
		t.Fatalf("unexpected players: %+v", ps)
	}
}

func TestJoinRejectsEmptyNameAndUnknownMap(t *testing.T) {
	w, _, cancel := newTestWorld(t)
	defer cancel()

	if _, _, err := w.Join("m1", ""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, _, err := w.Join("nope", "Bob"); !errors.Is(err, players.ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestActionAndTickMovesDog(t *testing.T) {
	w, _, cancel := newTestWorld(t)
	defer cancel()

	tok, dogID, err := w.Join("m1", "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := w.Action(string(tok), "R"); err != nil {
		t.Fatalf("Action: %v", err)
	}

	w.Tick(time.Second)

	state, err := w.State(string(tok))
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	var found bool
	for _, p := range state.Players {
		if p.DogID == dogID {
			found = true
			if p.X != 2 {
				t.Fatalf("expected dog to move to x=2, got %v", p.X)
			}
		}
	}
	if !found {
		t.Fatal("expected to find joined dog in state")
	}
}

func TestActionRejectsBadDirection(t *testing.T) {
	w, _, cancel := newTestWorld(t)
	defer cancel()

	tok, _, _ := w.Join("m1", "Alice")
	if err := w.Action(string(tok), "Q"); err == nil {
		t.Fatal("expected error for invalid move direction")
	}
}

func TestStateUnknownTokenFails(t *testing.T) {
	w, _, cancel := newTestWorld(t)
	defer cancel()

	if _, err := w.State("deadbeefdeadbeefdeadbeefdeadbeef"); !errors.Is(err, players.ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestSnapshotAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/state.bin"

	w, _, cancel := newTestWorld(t)
	tok, dogID, err := w.Join("m1", "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := w.Action(string(tok), "R"); err != nil {
		t.Fatalf("Action: %v", err)
	}
	w.Tick(time.Second)

	w.snapshotPath = path
	w.Snapshot()
	cancel()

	state, ok := snapshot.Read(path)
	if !ok {
		t.Fatal("snapshot.Read: expected to read back the snapshot just written")
	}

	w2 := NewWorld(Options{
		Game:       testGame(t),
		LootConfig: loot.Config{Period: 0, Probability: 0},
		Recorder:   &fakeRecorder{},
	})
	if err := w2.Restore(state); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	go w2.Run(ctx2)

	ps, err := w2.Players(string(tok))
	if err != nil {
		t.Fatalf("Players after restore: %v", err)
	}
	if len(ps) != 1 || ps[0].DogID != dogID {
		t.Fatalf("expected restored dog to be reachable by its original token, got %+v", ps)
	}

	restoredState, err := w2.State(string(tok))
	if err != nil {
		t.Fatalf("State after restore: %v", err)
	}
	if len(restoredState.Players) != 1 || restoredState.Players[0].X != 2 {
		t.Fatalf("expected restored dog position x=2, got %+v", restoredState.Players)
	}
}

func TestRetirementSweepRecordsAndRemovesPlayer(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewWorld(Options{
		Game:       testGame(t),
		LootConfig: loot.Config{Period: 0, Probability: 0},
		Recorder:   rec,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	tok, _, err := w.Join("m1", "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	w.Tick(61 * time.Second)

	if _, err := w.Players(string(tok)); !errors.Is(err, players.ErrUnknownToken) {
		t.Fatalf("expected retired player removed, got err=%v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.saved) != 1 || rec.saved[0] != "Alice" {
		t.Fatalf("expected one saved record for Alice, got %+v", rec.saved)
	}
}
