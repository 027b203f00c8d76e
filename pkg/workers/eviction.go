package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/tabletop/pkg/log"
)

// Evictor is implemented by game.Registry
type Evictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// EvictionWorker periodically releases game actors nobody has used for a
// while. Their state stays in the repository.
type EvictionWorker struct {
	evictor  Evictor
	interval time.Duration
	maxIdle  time.Duration
}

type NewEvictionWorkerOptions struct {
	Evictor  Evictor
	Interval time.Duration
	MaxIdle  time.Duration
}

func NewEvictionWorker(opts NewEvictionWorkerOptions) *EvictionWorker {
	return &EvictionWorker{
		evictor:  opts.Evictor,
		interval: opts.Interval,
		maxIdle:  opts.MaxIdle,
	}
}

func (w *EvictionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.evictor.EvictIdle(w.maxIdle); n > 0 {
				log.Info("Evicted %d idle games", n)
			}
		}
	}
}
