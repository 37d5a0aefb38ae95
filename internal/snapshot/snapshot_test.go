package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleState() State {
	return State{
		Sessions: []SessionState{
			{
				MapID:      "m1",
				NextDogID:  2,
				NextLootID: 1,
				LostObjects: []LostObjectState{
					{ID: 0, Type: 0, Value: 7, X: 5, Y: 0},
				},
				Dogs: []DogState{
					{ID: 0, Name: "A", PosX: 6, PosY: 0, BagCapacity: 3, Score: 0},
					{ID: 1, Name: "B", PosX: 0, PosY: 0, BagCapacity: 3, Score: 7},
				},
			},
		},
		Players: []PlayerState{
			{Token: "00000000000000000000000000000000"[:32], DogID: 0, MapID: "m1"},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")
	want := sampleState()

	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := Read(path)
	if !ok {
		t.Fatal("expected successful read")
	}
	if len(got.Sessions) != 1 || got.Sessions[0].MapID != "m1" {
		t.Fatalf("unexpected sessions: %+v", got.Sessions)
	}
	if len(got.Sessions[0].Dogs) != 2 || got.Sessions[0].Dogs[1].Score != 7 {
		t.Fatalf("unexpected dogs: %+v", got.Sessions[0].Dogs)
	}
	if len(got.Players) != 1 || got.Players[0].DogID != 0 {
		t.Fatalf("unexpected players: %+v", got.Players)
	}
}

func TestReadMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	_, ok := Read(filepath.Join(dir, "does-not-exist.bin"))
	if ok {
		t.Fatal("expected ok=false for missing file")
	}
}

func TestReadCorruptMagicStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.bin")
	if err := os.WriteFile(path, []byte("NOTDWSS-not-a-snapshot"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, ok := Read(path)
	if ok {
		t.Fatal("expected ok=false for corrupt magic")
	}
}
