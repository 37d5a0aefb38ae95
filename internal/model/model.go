package model

import (
	"fmt"
	"math"
	"math/rand"
)

// MapID uniquely identifies a Map for the lifetime of the process.
type MapID string

// OfficeID uniquely identifies an Office within its Map.
type OfficeID string

// RoadHalfWidth is half the walkable corridor width around a road's
// centerline; the full width is 0.8 units.
const RoadHalfWidth = 0.4

// OfficeRadius is the drop-off radius around an Office's position.
const OfficeRadius = 0.5

// Point is an integer coordinate, used for road endpoints, office
// positions and building placement.
type Point struct {
	X, Y int
}

// Position is a real-valued 2-D coordinate used for avatar and loot
// placement.
type Position struct {
	X, Y float64
}

// Sub returns p-q as a vector.
func (p Position) Sub(q Position) Position {
	return Position{p.X - q.X, p.Y - q.Y}
}

// Len returns the Euclidean length of p treated as a vector.
func (p Position) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	return p.Sub(q).Len()
}

// Orientation is the axis a Road runs along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Road is an axis-aligned segment between two integer points with a
// fixed corridor width of 2*RoadHalfWidth.
type Road struct {
	Orientation Orientation
	Start       Point
	End         Point
}

// NewHorizontalRoad builds a road running along X from start to (endX, start.Y).
func NewHorizontalRoad(start Point, endX int) Road {
	return Road{Orientation: Horizontal, Start: start, End: Point{X: endX, Y: start.Y}}
}

// NewVerticalRoad builds a road running along Y from start to (start.X, endY).
func NewVerticalRoad(start Point, endY int) Road {
	return Road{Orientation: Vertical, Start: start, End: Point{X: start.X, Y: endY}}
}

// bounds returns the road's AABB widened by RoadHalfWidth on every side.
func (r Road) bounds() (minX, minY, maxX, maxY float64) {
	x0, x1 := float64(r.Start.X), float64(r.End.X)
	y0, y1 := float64(r.Start.Y), float64(r.End.Y)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return x0 - RoadHalfWidth, y0 - RoadHalfWidth, x1 + RoadHalfWidth, y1 + RoadHalfWidth
}

// length returns the integer length of the road along its own axis.
func (r Road) length() int {
	if r.Orientation == Horizontal {
		d := r.End.X - r.Start.X
		if d < 0 {
			d = -d
		}
		return d
	}
	d := r.End.Y - r.Start.Y
	if d < 0 {
		d = -d
	}
	return d
}

// randomPoint picks a uniformly random integer step along the road's
// length and returns the corresponding real position on its centerline.
func (r Road) randomPoint(rnd *rand.Rand) Position {
	length := r.length()
	step := 0
	if length > 0 {
		step = rnd.Intn(length + 1)
	}
	if r.Orientation == Horizontal {
		dir := 1
		if r.End.X < r.Start.X {
			dir = -1
		}
		return Position{X: float64(r.Start.X + dir*step), Y: float64(r.Start.Y)}
	}
	dir := 1
	if r.End.Y < r.Start.Y {
		dir = -1
	}
	return Position{X: float64(r.Start.X), Y: float64(r.Start.Y + dir*step)}
}

// Building is a decorative obstacle with no collision role; carried
// through load->JSON unchanged.
type Building struct {
	Position Point
	Size     Size
}

// Size is a building's width/height in integer units.
type Size struct {
	Width, Height int
}

// Office is a drop-off point for a dog's bag.
type Office struct {
	ID       OfficeID
	Position Point
	Offset   Point
}

// LootType is one entry of a map's loot catalog; Extra carries any
// additional fields the config JSON supplied for this type verbatim.
type LootType struct {
	Name  string
	Value int
	Extra map[string]any
}

type roadKey struct {
	orientation Orientation
	point       Point
}

// roadIndex maps (orientation, integer point on centerline) -> road,
// giving O(1) lookup of the road a position belongs to.
type roadIndex struct {
	byKey map[roadKey]*Road
}

func newRoadIndex() *roadIndex {
	return &roadIndex{byKey: make(map[roadKey]*Road)}
}

func (ri *roadIndex) add(r *Road) {
	if r.Orientation == Horizontal {
		x0, x1 := r.Start.X, r.End.X
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		for x := x0; x <= x1; x++ {
			ri.byKey[roadKey{Horizontal, Point{x, r.Start.Y}}] = r
		}
	} else {
		y0, y1 := r.Start.Y, r.End.Y
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		for y := y0; y <= y1; y++ {
			ri.byKey[roadKey{Vertical, Point{r.Start.X, y}}] = r
		}
	}
}

func (ri *roadIndex) find(p Point, o Orientation) (*Road, bool) {
	r, ok := ri.byKey[roadKey{o, p}]
	return r, ok
}

// Map is an immutable world definition: roads, buildings, offices and a
// loot type catalog, plus the per-map tunables a session needs.
type Map struct {
	ID                MapID
	Name              string
	Roads             []Road
	Buildings         []Building
	Offices           []Office
	LootTypes         []LootType
	DogSpeed          float64
	BagCapacity       int
	RetirementTimeout float64 // seconds

	index *roadIndex
}

// NewMap builds a Map and its road index, validating the invariants
// spec.md §3 states: at least one road, at least one loot type.
func NewMap(id MapID, name string, roads []Road, buildings []Building, offices []Office, lootTypes []LootType, dogSpeed float64, bagCapacity int, retirementTimeout float64) (*Map, error) {
	if len(roads) == 0 {
		return nil, fmt.Errorf("model: map %q: at least one road is required", id)
	}
	if len(lootTypes) == 0 {
		return nil, fmt.Errorf("model: map %q: at least one loot type is required", id)
	}
	index := newRoadIndex()
	roadsCopy := make([]Road, len(roads))
	copy(roadsCopy, roads)
	for i := range roadsCopy {
		index.add(&roadsCopy[i])
	}
	return &Map{
		ID:                id,
		Name:              name,
		Roads:             roadsCopy,
		Buildings:         buildings,
		Offices:           offices,
		LootTypes:         lootTypes,
		DogSpeed:          dogSpeed,
		BagCapacity:       bagCapacity,
		RetirementTimeout: retirementTimeout,
		index:             index,
	}, nil
}

// FitPositionToRoad clamps attempted into the bounds of whichever road
// current sits on, preferring the road along the dominant axis of
// movement. It returns current unchanged if no road is found at all.
func (m *Map) FitPositionToRoad(current, attempted Position) Position {
	dx := attempted.X - current.X
	dy := attempted.Y - current.Y

	roundPoint := Point{X: int(math.Round(current.X)), Y: int(math.Round(current.Y))}

	primary, secondary := Horizontal, Vertical
	if math.Abs(dy) > math.Abs(dx) {
		primary, secondary = Vertical, Horizontal
	}

	road, ok := m.index.find(roundPoint, primary)
	if !ok {
		road, ok = m.index.find(roundPoint, secondary)
	}
	if !ok {
		return current
	}

	minX, minY, maxX, maxY := road.bounds()
	return Position{
		X: clamp(attempted.X, minX, maxX),
		Y: clamp(attempted.Y, minY, maxY),
	}
}

// RandomPosition picks a road uniformly, then a point uniformly along
// its length, using rnd for both draws.
func (m *Map) RandomPosition(rnd *rand.Rand) Position {
	r := m.Roads[rnd.Intn(len(m.Roads))]
	return r.randomPoint(rnd)
}

// StartPosition returns the spawn point used when randomize is false:
// the start of the first road.
func (m *Map) StartPosition() Position {
	r := m.Roads[0]
	return Position{X: float64(r.Start.X), Y: float64(r.Start.Y)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Game is the collection of loaded maps, addressable by id, preserving
// load order for listing endpoints.
type Game struct {
	maps  map[MapID]*Map
	order []MapID
}

// NewGame returns an empty map collection.
func NewGame() *Game {
	return &Game{maps: make(map[MapID]*Map)}
}

// AddMap registers m, rejecting a duplicate id.
func (g *Game) AddMap(m *Map) error {
	if _, exists := g.maps[m.ID]; exists {
		return fmt.Errorf("model: duplicate map id %q", m.ID)
	}
	g.maps[m.ID] = m
	g.order = append(g.order, m.ID)
	return nil
}

// FindMap looks up a map by id.
func (g *Game) FindMap(id MapID) (*Map, bool) {
	m, ok := g.maps[id]
	return m, ok
}

// Maps returns every loaded map in load order.
func (g *Game) Maps() []*Map {
	out := make([]*Map, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.maps[id])
	}
	return out
}
