package engine

import (
	"context"
	"time"
)

// RunTicker drives real-time ticks of period against w until ctx is
// cancelled, the same periodic-goroutine shape as teacher's
// sessionCleanupRoutine/filesystemSyncRoutine, repurposed here to fire
// World.Tick instead of a cleanup sweep. Only used in real-time mode;
// debug-step mode drives ticks from POST /api/v1/game/tick instead and
// never starts this goroutine.
func RunTicker(ctx context.Context, w *World, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			w.Tick(now.Sub(last))
			last = now
		case <-ctx.Done():
			return
		}
	}
}
