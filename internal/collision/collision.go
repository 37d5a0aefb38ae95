// Package collision implements swept-segment-vs-point gathering events,
// ordered by time, for the per-tick pickup resolution in C4.
package collision

import (
	"sort"
)

// Point is a real-valued 2-D coordinate, independent of model.Position
// to keep this package free of a dependency on the world model.
type Point struct {
	X, Y float64
}

// Item is a point with a pickup radius.
type Item struct {
	Position Point
	Radius   float64
}

// Gatherer is a segment swept from Start to End during one tick, with a
// gathering radius.
type Gatherer struct {
	Start, End Point
	Radius     float64
}

// Provider exposes the items and gatherers participating in one
// collision pass. Any adapter implementing it can be fed to
// FindGatherEvents; no inheritance hierarchy is needed.
type Provider interface {
	ItemsCount() int
	Item(idx int) Item
	GatherersCount() int
	Gatherer(idx int) Gatherer
}

// Event is one item-gatherer collision, with Time the parametric
// position along the gatherer's sweep ([0,1]) at which it occurred.
type Event struct {
	ItemIndex     int
	GathererIndex int
	SqDistance    float64
	Time          float64
}

// TryCollectPoint returns the squared perpendicular distance from c to
// the line through a and b, and the parametric projection of the
// closest point on that line in terms of a->b. It panics if a equals b;
// callers must skip stationary gatherers before calling this.
func TryCollectPoint(a, b, c Point) (sqDistance, projRatio float64) {
	if a == b {
		panic("collision: TryCollectPoint called with a == b")
	}
	abX, abY := b.X-a.X, b.Y-a.Y
	acX, acY := c.X-a.X, c.Y-a.Y

	abLenSq := abX*abX + abY*abY
	proj := (acX*abX + acY*abY) / abLenSq

	// Squared distance from c to the projected point on the line.
	crossZ := abX*acY - abY*acX
	sqDist := (crossZ * crossZ) / abLenSq

	return sqDist, proj
}

// FindGatherEvents runs every (gatherer, item) pair from p, keeping
// those whose projection lands within the sweep and whose distance is
// within the combined radii, sorted ascending by Time. Stationary
// gatherers are skipped entirely.
func FindGatherEvents(p Provider) []Event {
	var events []Event

	itemsCount := p.ItemsCount()
	gatherersCount := p.GatherersCount()

	for gi := 0; gi < gatherersCount; gi++ {
		g := p.Gatherer(gi)
		if g.Start == g.End {
			continue
		}
		for ii := 0; ii < itemsCount; ii++ {
			item := p.Item(ii)
			sqDist, proj := TryCollectPoint(g.Start, g.End, item.Position)
			if proj < 0 || proj > 1 {
				continue
			}
			combined := g.Radius + item.Radius
			if sqDist > combined*combined {
				continue
			}
			events = append(events, Event{
				ItemIndex:     ii,
				GathererIndex: gi,
				SqDistance:    sqDist,
				Time:          proj,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	return events
}
