// Command dogwalker-server starts the dog-walking loot collector game
// server: it loads a map config, connects to the leaderboard database,
// wires the simulation world to the HTTP control surface, and serves
// both the API and a static frontend from --www-root.
//
// Two tick modes are supported: real-time, when --tick-period is given,
// driving the simulation from a background ticker; and debug-step mode
// otherwise, where ticks are driven entirely by POST /api/v1/game/tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wannabeanything/dogwalker/api"
	"github.com/wannabeanything/dogwalker/internal/engine"
	"github.com/wannabeanything/dogwalker/internal/loot"
	"github.com/wannabeanything/dogwalker/internal/metrics"
	"github.com/wannabeanything/dogwalker/internal/model"
	"github.com/wannabeanything/dogwalker/internal/records"
	"github.com/wannabeanything/dogwalker/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	configFile     = flag.String("config-file", "", "path to the map config JSON (required)")
	wwwRoot        = flag.String("www-root", "", "path to the static frontend root (required)")
	tickPeriodMs   = flag.Int("tick-period", 0, "real-time tick period in milliseconds; absent runs in debug-step mode")
	stateFile      = flag.String("state-file", "", "path to a snapshot file to restore from and save to")
	savePeriodMs   = flag.Int("save-state-period", 0, "snapshot save period in milliseconds")
	randomizeSpawn = flag.Bool("randomize-spawn-points", false, "scatter new dogs across their road network instead of always spawning at the first road's start")
	addr           = flag.String("addr", ":8080", "HTTP listen address")
	debug          = flag.Bool("debug", false, "enable debug-level logging")
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dogwalker-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *configFile == "" {
		return fmt.Errorf("--config-file is required")
	}
	if *wwwRoot == "" {
		return fmt.Errorf("--www-root is required")
	}
	dbURL := os.Getenv("GAME_DB_URL")
	if dbURL == "" {
		return fmt.Errorf("GAME_DB_URL environment variable is required")
	}

	logger, err := newLogger(*debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	configData, err := os.ReadFile(*configFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	game, lootCfg, err := model.LoadGame(configData)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := records.NewRepository(ctx, dbURL, logger)
	if err != nil {
		return fmt.Errorf("connect to leaderboard database: %w", err)
	}
	defer repo.Close()

	registry := prometheus.NewRegistry()
	gameMetrics := metrics.New(registry)

	world := engine.NewWorld(engine.Options{
		Game:           game,
		LootConfig:     loot.Config{Period: time.Duration(lootCfg.PeriodSeconds * float64(time.Second)), Probability: lootCfg.Probability},
		RandomizeSpawn: *randomizeSpawn,
		Recorder:       repo,
		Logger:         logger,
		Metrics:        gameMetrics,
		SnapshotPath:   *stateFile,
		SavePeriod:     time.Duration(*savePeriodMs) * time.Millisecond,
	})

	if *stateFile != "" {
		if state, ok := snapshot.Read(*stateFile); ok {
			if err := world.Restore(state); err != nil {
				return fmt.Errorf("restore snapshot: %w", err)
			}
			logger.Info("restored snapshot", zap.String("path", *stateFile))
		}
	}

	debugMode := *tickPeriodMs <= 0
	apiServer := api.NewServer(api.Options{
		Game:      game,
		World:     world,
		Records:   repo,
		Registry:  registry,
		Logger:    logger,
		DebugMode: debugMode,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiServer)
	mux.Handle("/metrics", apiServer)
	mux.Handle("/", http.FileServer(http.Dir(*wwwRoot)))

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		world.Run(ctx)
	}()

	if !debugMode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.RunTicker(ctx, world, time.Duration(*tickPeriodMs)*time.Millisecond)
		}()
		logger.Info("running in real-time tick mode", zap.Int("tickPeriodMs", *tickPeriodMs))
	} else {
		logger.Info("running in debug-step tick mode; ticks are driven by POST /api/v1/game/tick")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", *addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-stop:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			cancel()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Take a final snapshot while the executor is still draining jobs
	// through its normal select loop, then cancel to stop World.Run and
	// the ticker; Submit after cancellation would never be drained.
	if *stateFile != "" {
		world.Snapshot()
	}
	cancel()
	wg.Wait()

	logger.Info("shutdown complete")
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
