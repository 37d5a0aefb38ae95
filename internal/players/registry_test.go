package players

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/wannabeanything/dogwalker/internal/gamesession"
	"github.com/wannabeanything/dogwalker/internal/loot"
	"github.com/wannabeanything/dogwalker/internal/model"
)

func newTestSession(t *testing.T) *gamesession.GameSession {
	t.Helper()
	roads := []model.Road{model.NewHorizontalRoad(model.Point{X: 0, Y: 0}, 10)}
	lootTypes := []model.LootType{{Name: "key", Value: 1}}
	m, err := model.NewMap("m", "Test", roads, nil, nil, lootTypes, 1, 3, 15)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return gamesession.NewGameSession(m, loot.Config{}, rand.New(rand.NewSource(1)))
}

func TestGenerateTokenFormat(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !tokenPattern.MatchString(string(tok)) {
		t.Fatalf("token %q does not match 32-hex pattern", tok)
	}
}

func TestRegistryAddAndFind(t *testing.T) {
	r := NewRegistry()
	session := newTestSession(t)
	dog := session.AddDog("A", false)

	p, err := r.Add("m", session, dog)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	found, err := r.FindByToken(string(p.Token))
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if found != p {
		t.Fatal("FindByToken returned a different player")
	}
}

func TestFindByTokenInvalidVsUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.FindByToken("not-hex"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	wellFormed := "00000000000000000000000000000000"[:32]
	if _, err := r.FindByToken(wellFormed); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestRemoveDeletesPlayerAndDog(t *testing.T) {
	r := NewRegistry()
	session := newTestSession(t)
	dog := session.AddDog("A", false)
	p, _ := r.Add("m", session, dog)

	r.Remove(p.Token)

	if _, err := r.FindByToken(string(p.Token)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected token removed, got %v", err)
	}
	if _, ok := session.FindDog(dog.ID); ok {
		t.Fatal("expected dog removed from session")
	}
}

type fakeRecorder struct {
	saved []string
	fail  bool
}

func (f *fakeRecorder) SaveRecord(name string, score int, playTime float64) error {
	if f.fail {
		return errors.New("boom")
	}
	f.saved = append(f.saved, name)
	return nil
}

func TestSweepRetirementsRecordsOnce(t *testing.T) {
	r := NewRegistry()
	session := newTestSession(t)
	dog := session.AddDog("A", false)
	p, _ := r.Add("m", session, dog)

	dog.UpdatePosition(15, session) // idle past retirement timeout of 15s

	rec := &fakeRecorder{}
	retired, errs := r.SweepRetirements(rec)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if retired != 1 {
		t.Fatalf("expected 1 retirement, got %d", retired)
	}
	if len(rec.saved) != 1 || rec.saved[0] != "A" {
		t.Fatalf("expected one save for A, got %+v", rec.saved)
	}
	if !dog.Recorded() {
		t.Fatal("expected dog marked recorded")
	}
	if _, err := r.FindByToken(string(p.Token)); !errors.Is(err, ErrUnknownToken) {
		t.Fatal("expected player removed after sweep")
	}

	// A second sweep must not record again (guarded by the recorded flag)
	// even if somehow still registered.
	retired, errs = r.SweepRetirements(rec)
	if len(errs) != 0 || len(rec.saved) != 1 || retired != 0 {
		t.Fatalf("expected no second save, got saved=%v errs=%v retired=%d", rec.saved, errs, retired)
	}
}

func TestSweepRetirementsKeepsRecordedFlagClearOnFailure(t *testing.T) {
	r := NewRegistry()
	session := newTestSession(t)
	dog := session.AddDog("A", false)
	r.Add("m", session, dog)
	dog.UpdatePosition(15, session)

	rec := &fakeRecorder{fail: true}
	retired, errs := r.SweepRetirements(rec)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if retired != 0 {
		t.Fatalf("expected 0 retirements recorded, got %d", retired)
	}
	if dog.Recorded() {
		t.Fatal("recorded flag must stay clear on save failure, to retry next sweep")
	}
}
