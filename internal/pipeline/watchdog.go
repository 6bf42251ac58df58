package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"foodsense/internal/logger"
)

const watchdogBudget = 30 * time.Second

// Watchdog is the advisory liveness failsafe: if the pipeline loop fails to
// reach its per-cycle heartbeat within the budget, the process is restarted
// via onExpire. This is the only fatal path in the system.
type Watchdog struct {
	budget   time.Duration
	lastBeat atomic.Int64 // unix nanos
	onExpire func()
	log      *logger.Logger
}

func NewWatchdog(log *logger.Logger, onExpire func()) *Watchdog {
	w := &Watchdog{
		budget:   watchdogBudget,
		onExpire: onExpire,
		log:      log,
	}
	w.lastBeat.Store(time.Now().UnixNano())
	return w
}

// Beat marks the per-iteration heartbeat point.
func (w *Watchdog) Beat() {
	w.lastBeat.Store(time.Now().UnixNano())
}

// Run checks the heartbeat periodically until ctx is canceled.
func (w *Watchdog) Run(ctx context.Context) {
	t := time.NewTicker(w.budget / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			last := time.Unix(0, w.lastBeat.Load())
			if now.Sub(last) > w.budget {
				w.log.Errorw("watchdog_expired", "last_beat", last, "budget", w.budget)
				w.onExpire()
				return
			}
		}
	}
}
