// Package scheduler runs a callback on a fixed period with a non-overlap
// guarantee, so lifecycle and reminder logic can be unit-tested by invoking
// the tick function directly without real time passing.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// TickFunc is one scheduler invocation. Errors are logged, never fatal; a
// failed tick does not prevent subsequent ticks.
type TickFunc func(ctx context.Context) error

// Scheduler fires a TickFunc once eagerly at start and then on every
// interval. If a tick is still running when the next interval fires, that
// firing is skipped rather than run concurrently.
type Scheduler struct {
	name     string
	interval time.Duration
	tick     TickFunc

	running sync.Mutex // held for the duration of a tick
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a Scheduler.
func New(name string, interval time.Duration, tick TickFunc) *Scheduler {
	return &Scheduler{name: name, interval: interval, tick: tick}
}

// Start launches the periodic loop. It returns immediately; the first tick
// runs eagerly in the background.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.run(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

// run executes one tick unless the previous one is still in flight.
func (s *Scheduler) run(ctx context.Context) {
	if !s.running.TryLock() {
		log.Printf("%s: previous tick still running, skipping", s.name)
		return
	}
	defer s.running.Unlock()

	if err := s.tick(ctx); err != nil {
		log.Printf("%s: tick failed: %v", s.name, err)
	}
}

// Stop cancels the loop and waits for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
