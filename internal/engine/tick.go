package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/wannabeanything/dogwalker/internal/gamesession"
	"github.com/wannabeanything/dogwalker/internal/model"
	"github.com/wannabeanything/dogwalker/internal/players"
	"github.com/wannabeanything/dogwalker/internal/snapshot"
)

// tickLocked must only run inside an executor job: it drives C2-C5 for
// every session, then fires the snapshot policy (spec.md §4.6/§4.8).
func (w *World) tickLocked(delta time.Duration) {
	deltaSeconds := delta.Seconds()

	for _, session := range w.sessions {
		n := session.Generator().Generate(delta, len(session.Dogs()), len(session.LostObjects()))
		if n > 0 {
			session.AddRandomLoot(n)
		}
	}

	for _, session := range w.sessions {
		groundBefore := len(session.LostObjects())
		for _, dog := range session.Dogs() {
			dog.UpdatePosition(deltaSeconds, session)
		}
		if w.metrics != nil {
			if picked := groundBefore - len(session.LostObjects()); picked > 0 {
				w.metrics.GatherEventsTotal.Add(float64(picked))
			}
		}
	}

	retired, errs := w.registry.SweepRetirements(w.recorder)
	for _, e := range errs {
		w.logger.Error("retirement sweep failed to save a record", zap.Error(e))
	}
	if w.metrics != nil && retired > 0 {
		w.metrics.RetirementsTotal.Add(float64(retired))
	}

	if w.metrics != nil {
		w.metrics.TicksTotal.Inc()
		w.metrics.ActiveSessions.Set(float64(len(w.sessions)))
		w.metrics.ActivePlayers.Set(float64(len(w.registry.All())))
	}

	w.maybeSnapshotLocked()
}

// maybeSnapshotLocked writes a snapshot if the save period has elapsed
// since the last one and a snapshot path was configured.
func (w *World) maybeSnapshotLocked() {
	if w.snapshotPath == "" || w.savePeriod <= 0 {
		return
	}
	if time.Since(w.lastSnapshot) < w.savePeriod {
		return
	}
	w.snapshotLocked()
}

func (w *World) snapshotLocked() {
	state := w.buildSnapshotLocked()
	if err := snapshot.Write(w.snapshotPath, state); err != nil {
		w.logger.Error("snapshot write failed", zap.Error(err))
		if w.metrics != nil {
			w.metrics.SnapshotErrorsTotal.Inc()
		}
		return
	}
	w.lastSnapshot = time.Now()
	if w.metrics != nil {
		w.metrics.SnapshotWritesTotal.Inc()
	}
}

// Snapshot forces an immediate snapshot write, used on graceful
// shutdown regardless of the save period.
func (w *World) Snapshot() {
	w.executor.Submit(func() {
		w.snapshotLocked()
	})
}

func (w *World) buildSnapshotLocked() snapshot.State {
	var state snapshot.State

	for mapID, session := range w.sessions {
		ss := snapshot.SessionState{MapID: string(mapID)}

		for id, obj := range session.LostObjects() {
			ss.NextLootID = maxInt(ss.NextLootID, int(id)+1)
			ss.LostObjects = append(ss.LostObjects, snapshot.LostObjectState{
				ID: int(id), Type: obj.Type, Value: obj.Value, X: obj.Position.X, Y: obj.Position.Y,
			})
		}

		for _, d := range session.Dogs() {
			ss.NextDogID = maxInt(ss.NextDogID, int(d.ID)+1)
			bag := make([]snapshot.InventoryItemState, 0, len(d.Bag()))
			for _, item := range d.Bag() {
				bag = append(bag, snapshot.InventoryItemState{ID: int(item.ID), Type: item.Type})
			}
			ss.Dogs = append(ss.Dogs, snapshot.DogState{
				ID:                int(d.ID),
				Name:              d.Name,
				PosX:              d.Position.X,
				PosY:              d.Position.Y,
				VelX:              d.Velocity.X,
				VelY:              d.Velocity.Y,
				Direction:         int(d.Facing),
				BagCapacity:       d.BagCapacity(),
				Bag:               bag,
				Score:             d.Score(),
				IdleTime:          d.IdleTime(),
				LifeTime:          d.LifeTime(),
				Retired:           d.Retired(),
				Recorded:          d.Recorded(),
				RetirementTimeout: d.RetirementTimeout(),
			})
		}

		state.Sessions = append(state.Sessions, ss)
	}

	for _, p := range w.registry.All() {
		state.Players = append(state.Players, snapshot.PlayerState{
			Token: string(p.Token),
			DogID: int(p.Dog.ID),
			MapID: string(p.MapID),
		})
	}

	return state
}

// Restore rebuilds every session and player from a previously written
// snapshot, matching each session's map id back to the loaded Map and
// each player's token back to its restored dog. Missing/corrupt
// snapshots are the caller's concern (snapshot.Read already reports
// "not found"); Restore itself assumes state is valid.
//
// Restore must only be called before Run starts draining the executor:
// it mutates w.sessions/w.registry directly rather than through
// Submit, since nothing is yet consuming the job queue at startup.
func (w *World) Restore(state snapshot.State) error {
	for _, ss := range state.Sessions {
		m, ok := w.game.FindMap(model.MapID(ss.MapID))
		if !ok {
			continue
		}
		session := gamesession.NewGameSession(m, w.lootCfg, w.rnd)
		for _, lo := range ss.LostObjects {
			session.RestoreLostObject(gamesession.LootID(lo.ID), lo.Type, lo.Value, model.Position{X: lo.X, Y: lo.Y})
		}
		for _, ds := range ss.Dogs {
			session.RestoreDog(dogFromState(ds))
		}
		w.sessions[model.MapID(ss.MapID)] = session
	}

	for _, ps := range state.Players {
		session, ok := w.sessions[model.MapID(ps.MapID)]
		if !ok {
			continue
		}
		dog, ok := session.FindDog(gamesession.DogID(ps.DogID))
		if !ok {
			continue
		}
		w.registry.Restore(players.Token(ps.Token), model.MapID(ps.MapID), session, dog)
	}
	return nil
}

func dogFromState(ds snapshot.DogState) *gamesession.Dog {
	bag := make([]gamesession.InventoryItem, 0, len(ds.Bag))
	for _, item := range ds.Bag {
		bag = append(bag, gamesession.InventoryItem{ID: gamesession.LootID(item.ID), Type: item.Type})
	}
	return gamesession.Restore(
		gamesession.DogID(ds.ID), ds.Name,
		model.Position{X: ds.PosX, Y: ds.PosY},
		model.Position{X: ds.VelX, Y: ds.VelY},
		gamesession.Direction(ds.Direction),
		ds.BagCapacity, bag, ds.Score,
		ds.IdleTime, ds.LifeTime, ds.Retired, ds.Recorded,
		ds.RetirementTimeout,
	)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
