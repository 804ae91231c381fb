// Package actor provides the goroutine scaffolding that drives the simulation
// actors. Each actor performs one unit of work per tick and sleeps a fixed
// interval in between. Actors never signal each other; they coordinate only
// through the shared state they are given at construction.
package actor

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// A Ticker performs one unit of work per tick. The return value reports
// whether the tick changed anything; runners ignore it, but it keeps tickers
// observable in tests.
type Ticker interface {
	Name() string
	Tick() bool
}

// A Runner drives one Ticker on its own timer until the context ends.
type Runner struct {
	ticker   Ticker
	interval time.Duration

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
}

// NewRunner creates a runner that ticks t every interval.
func NewRunner(t Ticker, interval time.Duration) (*Runner, error) {
	if t == nil {
		return nil, errors.New("runner needs a ticker")
	}

	if interval <= 0 {
		return nil, errors.Newf(
			"runner for %s needs a positive interval, got %s",
			t.Name(), interval)
	}

	return &Runner{ticker: t, interval: interval}, nil
}

// Name returns the name of the driven ticker.
func (r *Runner) Name() string {
	return r.ticker.Name()
}

// Run loops until ctx is cancelled, observing the shutdown signal at the top
// of every iteration.
func (r *Runner) Run(ctx context.Context) {
	timer := time.NewTicker(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.pauseLock.Lock()
			r.ticker.Tick()
			r.pauseLock.Unlock()
		}
	}
}

// Pause blocks the runner before its next tick. Pausing an already paused
// runner is a no-op.
func (r *Runner) Pause() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if r.isPaused {
		return
	}

	r.pauseLock.Lock()
	r.isPaused = true
}

// Continue resumes a paused runner. Continuing a running runner is a no-op.
func (r *Runner) Continue() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if !r.isPaused {
		return
	}

	r.pauseLock.Unlock()
	r.isPaused = false
}

// A Group owns a set of runners and starts and stops them together.
type Group struct {
	runners []*Runner
	wg      sync.WaitGroup
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{}
}

// Add registers a runner with the group. Must not be called after Start.
func (g *Group) Add(r *Runner) {
	g.runners = append(g.runners, r)
}

// Runners returns the registered runners.
func (g *Group) Runners() []*Runner {
	return g.runners
}

// Start launches one goroutine per runner.
func (g *Group) Start(ctx context.Context) {
	for _, r := range g.runners {
		g.wg.Add(1)
		go func(r *Runner) {
			defer g.wg.Done()
			r.Run(ctx)
		}(r)
	}
}

// Wait blocks until every runner has observed the shutdown signal and
// returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Pause pauses every runner in the group.
func (g *Group) Pause() {
	for _, r := range g.runners {
		r.Pause()
	}
}

// Continue resumes every runner in the group.
func (g *Group) Continue() {
	for _, r := range g.runners {
		r.Continue()
	}
}
