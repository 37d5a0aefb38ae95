// Package loot implements the probabilistic spawn generator driven once
// per tick per session.
package loot

import (
	"math"
	"time"
)

// Config is the {period, probability} pair loaded once for the whole
// game and copied into every session's generator.
type Config struct {
	Period      time.Duration
	Probability float64
}

// Generator accumulates elapsed time and turns it into a number of new
// items to spawn, bounded by the current shortage of items relative to
// looters. It is stateful across calls and must not be shared between
// sessions.
type Generator struct {
	cfg             Config
	timeWithoutLoot time.Duration
}

// NewGenerator returns a Generator configured with cfg.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate returns how many items should be spawned given delta elapsed
// time, the current number of looters (dogs) and the current number of
// items on the ground. The result satisfies
// 0 <= n <= max(0, looters-items).
func (g *Generator) Generate(delta time.Duration, looters, items int) int {
	g.timeWithoutLoot += delta

	shortage := looters - items
	if shortage <= 0 {
		return 0
	}

	if g.cfg.Period <= 0 {
		return 0
	}

	readyIntervals := float64(g.timeWithoutLoot) / float64(g.cfg.Period)
	n := int(math.Round(readyIntervals * float64(shortage) * g.cfg.Probability))
	if n < 0 {
		n = 0
	}
	if n > shortage {
		n = shortage
	}
	if n > 0 {
		g.timeWithoutLoot = 0
	}
	return n
}
