// Package janitor runs periodic maintenance over the dedup cache. Each
// resolution call already sweeps opportunistically; the janitor keeps the
// cache from holding dead entries across quiet periods.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"agendum/internal/dedup"
)

// Janitor sweeps the dedup cache on a cron schedule.
type Janitor struct {
	cache    *dedup.Cache
	schedule cron.Schedule
	spec     string

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	done    chan struct{}
}

// New parses spec with the standard cron grammar (descriptors like
// "@every 1m" included) and returns a stopped janitor.
func New(cache *dedup.Cache, spec string) (*Janitor, error) {
	parsed, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse janitor schedule %q: %w", spec, err)
	}
	return &Janitor{cache: cache, schedule: parsed, spec: spec}, nil
}

func (j *Janitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true

	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.run(ctx)

	slog.Info("Janitor started", "schedule", j.spec)
}

func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.cancel()
	done := j.done
	j.mu.Unlock()

	<-done
	slog.Info("Janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	for {
		now := time.Now()
		next := j.schedule.Next(now)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case tick := <-timer.C:
			evicted := j.cache.Sweep(tick)
			if evicted > 0 {
				slog.Debug("Dedup cache swept", "evicted", evicted, "live", j.cache.Len())
			}
		}
	}
}
