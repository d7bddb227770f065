// Package engine provides the tick loop that drives a grid in real time and
// the batch experiment driver used to score simulation runs.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/gridlife/internal/grid"
)

// Engine drives a grid forward. All access to the grid from other goroutines
// must go through View or Update so it never observes a half-finished tick.
type Engine struct {
	mu   sync.Mutex
	grid *grid.Grid

	speed    atomic.Uint64 // math.Float64bits of the speed multiplier
	Interval time.Duration // Base tick interval at speed 1
	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	ReportEvery uint64 // Ticks between census reports; 0 disables them
	KeepEvents  int    // Recent events retained for RecentEvents

	recent []grid.Event

	// Callbacks, called with the engine lock held.
	OnTick   func(g *grid.Grid, tick uint64)
	OnEvents func(events []grid.Event)
	OnReport func(c Census)
}

// New creates an engine for g running at speed 1 with a 100ms interval.
func New(g *grid.Grid) *Engine {
	e := &Engine{
		grid:        g,
		Interval:    100 * time.Millisecond,
		ReportEvery: 100,
		KeepEvents:  1000,
		stop:        make(chan struct{}),
	}
	e.SetSpeed(1)
	return e
}

// Run advances the grid until ctx is done, Stop is called or a tick fails.
// A tick error is returned; a clean shutdown returns nil.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed())

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Tick(), "reason", ctx.Err())
			return nil
		case <-e.stop:
			slog.Info("simulation engine stopped", "tick", e.Tick())
			return nil
		default:
		}

		speed := e.Speed()
		if speed <= 0 {
			// Paused; check again shortly.
			e.sleep(ctx, 100*time.Millisecond)
			continue
		}

		start := time.Now()
		if err := e.Step(); err != nil {
			slog.Error("tick failed", "tick", e.Tick(), "error", err)
			return err
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			e.sleep(ctx, target-elapsed)
		}
	}
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-e.stop:
	case <-t.C:
	}
}

// Step advances the grid by one tick and fires the callbacks. It does
// nothing while the grid is paused.
func (e *Engine) Step() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.grid.Paused() {
		return nil
	}
	if err := e.grid.AdvanceTick(); err != nil {
		return err
	}
	tick := e.grid.Epoch()

	if events := e.grid.DrainEvents(); len(events) > 0 {
		e.remember(events)
		if e.OnEvents != nil {
			e.OnEvents(events)
		}
	}
	if e.OnTick != nil {
		e.OnTick(e.grid, tick)
	}
	if e.ReportEvery > 0 && tick%e.ReportEvery == 0 {
		c := TakeCensus(e.grid)
		c.Log()
		if e.OnReport != nil {
			e.OnReport(c)
		}
	}
	return nil
}

func (e *Engine) remember(events []grid.Event) {
	e.recent = append(e.recent, events...)
	if over := len(e.recent) - e.KeepEvents; over > 0 {
		e.recent = append([]grid.Event(nil), e.recent[over:]...)
	}
}

// RecentEvents returns up to limit of the latest events, oldest first.
func (e *Engine) RecentEvents(limit int) []grid.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit >= 0 && len(e.recent) > limit {
		start = len(e.recent) - limit
	}
	return append([]grid.Event(nil), e.recent[start:]...)
}

// Stop halts Run. It is safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Running reports whether Run is active.
func (e *Engine) Running() bool { return e.running.Load() }

// View calls fn with the grid while no tick is in progress. fn must not
// mutate the grid.
func (e *Engine) View(fn func(g *grid.Grid)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.grid)
}

// Update calls fn with exclusive access to the grid between ticks.
func (e *Engine) Update(fn func(g *grid.Grid) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.grid)
}

// Tick returns the grid's current epoch.
func (e *Engine) Tick() uint64 {
	var t uint64
	e.View(func(g *grid.Grid) { t = g.Epoch() })
	return t
}

// SetSpeed sets the speed multiplier. 0 or less pauses the loop.
func (e *Engine) SetSpeed(s float64) { e.speed.Store(math.Float64bits(s)) }

// Speed returns the speed multiplier.
func (e *Engine) Speed() float64 { return math.Float64frombits(e.speed.Load()) }
