// Package engine drives the simulation tick (C6): a single-writer
// executor serializing session/player mutation, the World that owns
// every session and the player registry, and the real-time/debug-step
// tick drivers.
package engine

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/wannabeanything/dogwalker/internal/apierr"
	"github.com/wannabeanything/dogwalker/internal/gamesession"
	"github.com/wannabeanything/dogwalker/internal/loot"
	"github.com/wannabeanything/dogwalker/internal/metrics"
	"github.com/wannabeanything/dogwalker/internal/model"
	"github.com/wannabeanything/dogwalker/internal/players"
)

// World owns every live session and the player registry. All exported
// methods except Restore (a startup-only call, see its doc) serialize
// through the executor before touching any session or the registry,
// per spec.md §5's ordering guarantees. "Read-only"
// endpoints that don't touch session/player state (GET /maps,
// GET /records) are intentionally not methods of World — they read
// from model.Game and records.Repository directly and may run off the
// executor.
type World struct {
	game     *model.Game
	sessions map[model.MapID]*gamesession.GameSession
	registry *players.Registry

	lootCfg        loot.Config
	recorder       players.Recorder
	randomizeSpawn bool
	rnd            *rand.Rand
	logger         *zap.Logger
	metrics        *metrics.Metrics
	executor       *Executor
	snapshotPath   string
	savePeriod     time.Duration
	lastSnapshot   time.Time
}

// Options configures a new World.
type Options struct {
	Game           *model.Game
	LootConfig     loot.Config
	RandomizeSpawn bool
	Recorder       players.Recorder
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	SnapshotPath   string
	SavePeriod     time.Duration
}

// NewWorld builds a World ready to run; call Run in its own goroutine
// to start draining the executor.
func NewWorld(opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		game:           opts.Game,
		sessions:       make(map[model.MapID]*gamesession.GameSession),
		registry:       players.NewRegistry(),
		lootCfg:        opts.LootConfig,
		recorder:       opts.Recorder,
		randomizeSpawn: opts.RandomizeSpawn,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:         logger,
		metrics:        opts.Metrics,
		executor:       NewExecutor(256),
		snapshotPath:   opts.SnapshotPath,
		savePeriod:     opts.SavePeriod,
	}
}

// Run drains the executor until ctx is cancelled. Call from its own
// goroutine; NewWorld's caller is responsible for taking a final
// snapshot on shutdown and then cancelling ctx, since a Submit made
// after Run has returned is never drained.
func (w *World) Run(ctx context.Context) {
	w.executor.Run(ctx)
}

// getOrCreateSession must only be called from within an executor job.
func (w *World) getOrCreateSession(mapID model.MapID) (*gamesession.GameSession, error) {
	if s, ok := w.sessions[mapID]; ok {
		return s, nil
	}
	m, ok := w.game.FindMap(mapID)
	if !ok {
		return nil, players.ErrMapNotFound
	}
	s := gamesession.NewGameSession(m, w.lootCfg, w.rnd)
	w.sessions[mapID] = s
	return s, nil
}

// Join creates (or reuses) the session for mapID, adds a dog named
// userName, registers a player and returns its token and player id.
func (w *World) Join(mapID model.MapID, userName string) (players.Token, gamesession.DogID, error) {
	var token players.Token
	var playerID gamesession.DogID
	var err error

	w.executor.Submit(func() {
		if userName == "" {
			err = players.ErrEmptyName
			return
		}
		session, e := w.getOrCreateSession(mapID)
		if e != nil {
			err = e
			return
		}
		dog := session.AddDog(userName, w.randomizeSpawn)
		p, e := w.registry.Add(mapID, session, dog)
		if e != nil {
			err = e
			return
		}
		token = p.Token
		playerID = dog.ID
		if w.metrics != nil {
			w.metrics.JoinsTotal.Inc()
			w.metrics.ActivePlayers.Set(float64(len(w.registry.All())))
			w.metrics.ActiveSessions.Set(float64(len(w.sessions)))
		}
	})

	return token, playerID, err
}

// PlayerInfo is one entry of the GET /game/players response.
type PlayerInfo struct {
	DogID gamesession.DogID
	Name  string
}

// Players returns every dog in the same session as the token's player.
func (w *World) Players(rawToken string) ([]PlayerInfo, error) {
	var out []PlayerInfo
	var err error

	w.executor.Submit(func() {
		p, e := w.registry.FindByToken(rawToken)
		if e != nil {
			err = e
			return
		}
		for _, d := range p.Session.Dogs() {
			out = append(out, PlayerInfo{DogID: d.ID, Name: d.Name})
		}
	})

	return out, err
}

// DogStateView is one dog's state as reported by GET /game/state.
type DogStateView struct {
	DogID     gamesession.DogID
	X, Y      float64
	VX, VY    float64
	Direction gamesession.Direction
	Bag       []gamesession.InventoryItem
	Score     int
}

// LostObjectView is one ground item as reported by GET /game/state.
type LostObjectView struct {
	ID   gamesession.LootID
	Type int
	X, Y float64
}

// StateView is the full GET /game/state payload for one session.
type StateView struct {
	Players     []DogStateView
	LostObjects []LostObjectView
}

// State returns the current session state visible to rawToken's player.
func (w *World) State(rawToken string) (StateView, error) {
	var view StateView
	var err error

	w.executor.Submit(func() {
		p, e := w.registry.FindByToken(rawToken)
		if e != nil {
			err = e
			return
		}
		for _, d := range p.Session.Dogs() {
			view.Players = append(view.Players, DogStateView{
				DogID:     d.ID,
				X:         d.Position.X,
				Y:         d.Position.Y,
				VX:        d.Velocity.X,
				VY:        d.Velocity.Y,
				Direction: d.Facing,
				Bag:       d.Bag(),
				Score:     d.Score(),
			})
		}
		for id, obj := range p.Session.LostObjects() {
			view.LostObjects = append(view.LostObjects, LostObjectView{
				ID:   id,
				Type: obj.Type,
				X:    obj.Position.X,
				Y:    obj.Position.Y,
			})
		}
	})

	return view, err
}

// Action applies a move command ("L"|"R"|"U"|"D"|"") to rawToken's dog.
func (w *World) Action(rawToken, move string) error {
	var err error

	w.executor.Submit(func() {
		p, e := w.registry.FindByToken(rawToken)
		if e != nil {
			err = e
			return
		}
		if move == "" {
			p.Dog.Stop()
			return
		}
		dir, ok := parseDirection(move)
		if !ok {
			err = apierr.New(apierr.InvalidArgument, "invalid move direction: "+move)
			return
		}
		p.Dog.SetMove(dir, p.Session.Map().DogSpeed)
	})

	return err
}

func parseDirection(move string) (gamesession.Direction, bool) {
	switch move {
	case "U":
		return gamesession.North, true
	case "D":
		return gamesession.South, true
	case "L":
		return gamesession.West, true
	case "R":
		return gamesession.East, true
	}
	return 0, false
}

// Tick runs one simulation step of duration delta: loot generation,
// per-dog movement/pickup/drop-off, the retirement sweep, and a
// snapshot if the save policy fires.
func (w *World) Tick(delta time.Duration) {
	w.executor.Submit(func() {
		w.tickLocked(delta)
	})
}
