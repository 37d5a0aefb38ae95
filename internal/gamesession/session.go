package gamesession

import (
	"math/rand"

	"github.com/wannabeanything/dogwalker/internal/collision"
	"github.com/wannabeanything/dogwalker/internal/loot"
	"github.com/wannabeanything/dogwalker/internal/model"
)

// LostObject is an item lying on the ground somewhere along a road.
type LostObject struct {
	ID       LootID
	Type     int
	Value    int
	Position model.Position
}

// GameSession is one running instance of a map: its live dogs and lost
// items. spec.md lazily creates exactly one session per map on first
// join.
type GameSession struct {
	mapRef *model.Map

	nextDogID  DogID
	nextLootID LootID

	dogs        []*Dog
	lostObjects map[LootID]*LostObject

	generator *loot.Generator
	rnd       *rand.Rand
}

// NewGameSession creates an empty session for m, with its own loot
// generator configured from lootCfg; spawn and loot draws use rnd,
// which the caller supplies and may share between sessions.
func NewGameSession(m *model.Map, lootCfg loot.Config, rnd *rand.Rand) *GameSession {
	return &GameSession{
		mapRef:      m,
		lostObjects: make(map[LootID]*LostObject),
		generator:   loot.NewGenerator(lootCfg),
		rnd:         rnd,
	}
}

// Map returns the session's map.
func (s *GameSession) Map() *model.Map {
	return s.mapRef
}

// Dogs returns every live dog in the session.
func (s *GameSession) Dogs() []*Dog {
	return s.dogs
}

// LostObjects returns the session's current ground items, keyed by id.
func (s *GameSession) LostObjects() map[LootID]*LostObject {
	return s.lostObjects
}

// Generator exposes the session's loot generator for the tick driver.
func (s *GameSession) Generator() *loot.Generator {
	return s.generator
}

// AddDog creates a new dog in the session. When randomize is true the
// spawn point is drawn uniformly from the map's roads; otherwise it is
// the first road's start point.
func (s *GameSession) AddDog(name string, randomize bool) *Dog {
	var pos model.Position
	if randomize {
		pos = s.mapRef.RandomPosition(s.rnd)
	} else {
		pos = s.mapRef.StartPosition()
	}
	id := s.nextDogID
	s.nextDogID++
	dog := NewDog(id, name, pos, s.mapRef.BagCapacity, s.mapRef.RetirementTimeout)
	s.dogs = append(s.dogs, dog)
	return dog
}

// RemoveDog deletes the dog with id from the session, if present.
func (s *GameSession) RemoveDog(id DogID) {
	for i, d := range s.dogs {
		if d.ID == id {
			s.dogs = append(s.dogs[:i], s.dogs[i+1:]...)
			return
		}
	}
}

// FindDog returns the dog with id, if present.
func (s *GameSession) FindDog(id DogID) (*Dog, bool) {
	for _, d := range s.dogs {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// AddRandomLoot spawns n new lost objects at uniformly sampled road
// positions, with types drawn uniformly from the map's loot catalog.
func (s *GameSession) AddRandomLoot(n int) {
	lootTypes := s.mapRef.LootTypes
	for i := 0; i < n; i++ {
		typeIdx := s.rnd.Intn(len(lootTypes))
		id := s.nextLootID
		s.nextLootID++
		s.lostObjects[id] = &LostObject{
			ID:       id,
			Type:     typeIdx,
			Value:    lootTypes[typeIdx].Value,
			Position: s.mapRef.RandomPosition(s.rnd),
		}
	}
}

// collectAlong runs collision detection for one dog's sweep from start
// to end over the session's current lost objects, transferring picked
// items from the ground into the dog's bag in time order, stopping
// early once the bag is full.
func (s *GameSession) collectAlong(d *Dog, start, end model.Position) {
	if start == end || len(s.lostObjects) == 0 {
		return
	}

	ids := make([]LootID, 0, len(s.lostObjects))
	for id := range s.lostObjects {
		ids = append(ids, id)
	}

	g := &dogGatherer{start: start, end: end, lootIDs: ids, lostObjs: s.lostObjects}
	events := collision.FindGatherEvents(g)

	for _, ev := range events {
		if !d.canPickUp() {
			break
		}
		id := ids[ev.ItemIndex]
		obj, ok := s.lostObjects[id]
		if !ok {
			continue
		}
		d.pickUp(obj.ID, obj.Type, obj.Value)
		delete(s.lostObjects, id)
	}
}

// RestoreDog re-inserts a dog loaded from a snapshot, bumping
// nextDogID past it if necessary.
func (s *GameSession) RestoreDog(d *Dog) {
	s.dogs = append(s.dogs, d)
	if d.ID >= s.nextDogID {
		s.nextDogID = d.ID + 1
	}
}

// RestoreLostObject re-inserts a lost object loaded from a snapshot.
func (s *GameSession) RestoreLostObject(id LootID, typ, value int, pos model.Position) {
	obj := &LostObject{ID: id, Type: typ, Value: value, Position: pos}
	s.lostObjects[id] = obj
	if id >= s.nextLootID {
		s.nextLootID = id + 1
	}
}
