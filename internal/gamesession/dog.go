// Package gamesession implements the avatar kinematics, inventory and
// score accounting (C4): Dog and GameSession, and the per-tick
// UpdatePosition integration that drives movement, pickup and
// drop-off.
package gamesession

import (
	"github.com/wannabeanything/dogwalker/internal/collision"
	"github.com/wannabeanything/dogwalker/internal/model"
)

// DogID uniquely identifies a dog within its session; it is also the
// externally visible "player id".
type DogID int

// LootID uniquely identifies a lost object within its session.
type LootID int

// Direction is the avatar's facing direction.
type Direction int

const (
	North Direction = iota
	South
	West
	East
)

// Unit returns the unit vector for d.
func (d Direction) Unit() model.Position {
	switch d {
	case North:
		return model.Position{X: 0, Y: -1}
	case South:
		return model.Position{X: 0, Y: 1}
	case West:
		return model.Position{X: -1, Y: 0}
	case East:
		return model.Position{X: 1, Y: 0}
	}
	return model.Position{}
}

// InventoryItem is one item carried in a dog's bag.
type InventoryItem struct {
	ID   LootID
	Type int
}

// Dog is a player avatar.
type Dog struct {
	ID       DogID
	Name     string
	Position model.Position
	Velocity model.Position
	Facing   Direction

	bagCapacity int
	bag         []InventoryItem
	score       int

	idleTime   float64
	lifeTime   float64
	retired    bool
	recorded   bool

	retirementTimeout float64
}

// NewDog creates a dog at pos with the given bag capacity and
// retirement timeout, facing North with zero velocity.
func NewDog(id DogID, name string, pos model.Position, bagCapacity int, retirementTimeout float64) *Dog {
	return &Dog{
		ID:                id,
		Name:              name,
		Position:          pos,
		Facing:            North,
		bagCapacity:       bagCapacity,
		retirementTimeout: retirementTimeout,
	}
}

// Restore reconstructs a Dog from persisted snapshot fields, bypassing
// NewDog's fresh-spawn defaults.
func Restore(id DogID, name string, pos, velocity model.Position, facing Direction, bagCapacity int, bag []InventoryItem, score int, idleTime, lifeTime float64, retired, recorded bool, retirementTimeout float64) *Dog {
	return &Dog{
		ID:                id,
		Name:              name,
		Position:          pos,
		Velocity:          velocity,
		Facing:            facing,
		bagCapacity:       bagCapacity,
		bag:               bag,
		score:             score,
		idleTime:          idleTime,
		lifeTime:          lifeTime,
		retired:           retired,
		recorded:          recorded,
		retirementTimeout: retirementTimeout,
	}
}

// SetDirection changes facing without affecting speed; callers that
// also want to start moving should call SetMove instead.
func (d *Dog) SetDirection(dir Direction) {
	d.Facing = dir
}

// SetMove sets the dog's facing direction to dir and its velocity to
// speed*unit(dir). Passing speed 0 stops the dog but still turns it to
// face dir; the `{"move":""}` command uses Stop instead, which keeps the
// current facing.
func (d *Dog) SetMove(dir Direction, speed float64) {
	d.Facing = dir
	unit := dir.Unit()
	d.Velocity = model.Position{X: unit.X * speed, Y: unit.Y * speed}
}

// Stop zeroes velocity while keeping the current facing direction.
func (d *Dog) Stop() {
	d.Velocity = model.Position{}
}

// Bag returns the dog's current inventory; callers must not mutate the
// returned slice.
func (d *Dog) Bag() []InventoryItem {
	return d.bag
}

// BagCapacity returns the maximum number of items the dog can carry.
func (d *Dog) BagCapacity() int {
	return d.bagCapacity
}

// Score returns the sum of values of every item ever picked up.
func (d *Dog) Score() int {
	return d.score
}

// IdleTime returns seconds since the dog last made movement progress.
func (d *Dog) IdleTime() float64 {
	return d.idleTime
}

// LifeTime returns total seconds alive.
func (d *Dog) LifeTime() float64 {
	return d.lifeTime
}

// RetirementTimeout returns the idle-seconds threshold past which the
// dog retires.
func (d *Dog) RetirementTimeout() float64 {
	return d.retirementTimeout
}

// Retired reports whether the dog has been marked retired by idle
// timeout.
func (d *Dog) Retired() bool {
	return d.retired
}

// Recorded reports whether this dog's retirement has already been
// appended to the record repository.
func (d *Dog) Recorded() bool {
	return d.recorded
}

// MarkRecorded sets the recorded flag, guarding against a second
// SaveRecord call for the same dog.
func (d *Dog) MarkRecorded() {
	d.recorded = true
}

func (d *Dog) canPickUp() bool {
	return len(d.bag) < d.bagCapacity
}

func (d *Dog) pickUp(id LootID, typ, value int) {
	d.bag = append(d.bag, InventoryItem{ID: id, Type: typ})
	d.score += value
}

func (d *Dog) emptyBag() {
	d.bag = nil
}

// dogGatherer adapts a single dog's tick sweep plus a session's lost
// objects into a collision.Provider, as spec.md §9's "polymorphic
// item-gatherer provider" note describes: one adapter per tick, no
// inheritance needed.
type dogGatherer struct {
	start, end model.Position
	lootIDs    []LootID
	lostObjs   map[LootID]*LostObject
}

func (g *dogGatherer) ItemsCount() int { return len(g.lootIDs) }

func (g *dogGatherer) Item(idx int) collision.Item {
	obj := g.lostObjs[g.lootIDs[idx]]
	return collision.Item{Position: collision.Point{X: obj.Position.X, Y: obj.Position.Y}, Radius: 0}
}

func (g *dogGatherer) GatherersCount() int { return 1 }

func (g *dogGatherer) Gatherer(idx int) collision.Gatherer {
	return collision.Gatherer{
		Start:  collision.Point{X: g.start.X, Y: g.start.Y},
		End:    collision.Point{X: g.end.X, Y: g.end.Y},
		Radius: GatherRadius,
	}
}

// GatherRadius is the swept-segment radius used for item pickup.
const GatherRadius = 0.6

// UpdatePosition runs one tick of movement, pickup and drop-off
// integration for d, exactly per spec.md §4.4. session supplies the map
// geometry, lost objects and offices; it is passed explicitly rather
// than held as a back-reference to avoid the Dog<->Session ownership
// cycle (spec.md §9).
func (d *Dog) UpdatePosition(deltaSeconds float64, session *GameSession) {
	if d.Velocity == (model.Position{}) {
		d.idleTime += deltaSeconds
		d.lifeTime += deltaSeconds
		if d.idleTime >= d.retirementTimeout {
			d.retired = true
		}
		return
	}

	attempted := model.Position{
		X: d.Position.X + d.Velocity.X*deltaSeconds,
		Y: d.Position.Y + d.Velocity.Y*deltaSeconds,
	}
	newPos := session.Map().FitPositionToRoad(d.Position, attempted)

	distanceMoved := newPos.Distance(d.Position)
	speed := d.Velocity.Len()
	activeTime := 0.0
	if speed > 0 {
		activeTime = distanceMoved / speed
	}
	idleDelta := deltaSeconds - activeTime
	if idleDelta > 0 {
		d.idleTime += idleDelta
	}
	if newPos == attempted {
		d.idleTime = 0
	}

	session.collectAlong(d, d.Position, newPos)

	for _, office := range session.mapRef.Offices {
		officePos := model.Position{X: float64(office.Position.X), Y: float64(office.Position.Y)}
		if newPos.Distance(officePos) <= model.OfficeRadius {
			d.emptyBag()
			break
		}
	}

	d.Position = newPos
	d.lifeTime += deltaSeconds

	if d.idleTime >= d.retirementTimeout {
		d.retired = true
		d.Velocity = model.Position{}
	}
}
