// Package metrics exposes the tick/join/gather counters and active
// session/player gauges scraped at /metrics, built with promauto against
// an explicit registry and held in a Metrics struct rather than in
// package-level vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every Prometheus collector the engine and API surface
// update. A single instance is constructed in main and threaded through
// engine.World and api.Server.
type Metrics struct {
	TicksTotal          prometheus.Counter
	JoinsTotal          prometheus.Counter
	GatherEventsTotal   prometheus.Counter
	RetirementsTotal    prometheus.Counter
	ActiveSessions      prometheus.Gauge
	ActivePlayers       prometheus.Gauge
	SnapshotWritesTotal prometheus.Counter
	SnapshotErrorsTotal prometheus.Counter
}

// New registers every collector against reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TicksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_ticks_total",
			Help: "Total number of simulation ticks executed.",
		}),
		JoinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_joins_total",
			Help: "Total number of successful /game/join calls.",
		}),
		GatherEventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_gather_events_total",
			Help: "Total number of items picked up across all sessions.",
		}),
		RetirementsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_retirements_total",
			Help: "Total number of dogs retired and recorded.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dogwalker_active_sessions",
			Help: "Number of live game sessions.",
		}),
		ActivePlayers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dogwalker_active_players",
			Help: "Number of registered players across all sessions.",
		}),
		SnapshotWritesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_snapshot_writes_total",
			Help: "Total number of successful snapshot writes.",
		}),
		SnapshotErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dogwalker_snapshot_errors_total",
			Help: "Total number of snapshot write failures.",
		}),
	}
}
