package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/gridlife/internal/grid"
)

// DefaultTimes is the number of trials run when Experiment.Times is unset.
const DefaultTimes = 5

// ErrNoBuilder is returned by Experiment.Run without a Build function.
var ErrNoBuilder = errors.New("engine: experiment has no builder")

// BuildFunc returns a fresh initial grid for trial i. Every trial must get
// its own grid so trials never share state.
type BuildFunc func(trial int) (*grid.Grid, error)

// StopFunc reports whether a run is over.
type StopFunc func(g *grid.Grid) bool

// ScoreFunc scores a finished run.
type ScoreFunc func(g *grid.Grid) float64

// Experiment runs the same scenario several times and scores each run.
type Experiment struct {
	Build      BuildFunc
	ShouldStop StopFunc
	Score      ScoreFunc
	Times      int    // Trials to run (DefaultTimes when 0)
	MaxTicks   uint64 // Safety limit per trial; 0 means none
	Verbose    bool   // Log each trial's score

	OnTrial func(t Trial)
}

// Trial is the outcome of one run.
type Trial struct {
	ID       uuid.UUID     `json:"id"`
	Index    int           `json:"index"`
	Ticks    uint64        `json:"ticks"`
	Score    float64       `json:"score"`
	Stopped  bool          `json:"stopped"` // ShouldStop ended the run rather than MaxTicks
	Duration time.Duration `json:"duration"`
	Census   Census        `json:"census"`
}

// Run executes every trial in order. It stops early when ctx is cancelled
// or a tick fails, returning the trials completed so far.
func (x Experiment) Run(ctx context.Context) ([]Trial, error) {
	if x.Build == nil {
		return nil, ErrNoBuilder
	}
	times := x.Times
	if times <= 0 {
		times = DefaultTimes
	}

	trials := make([]Trial, 0, times)
	for i := 0; i < times; i++ {
		t, err := x.trial(ctx, i)
		if err != nil {
			return trials, fmt.Errorf("trial %d: %w", i+1, err)
		}
		trials = append(trials, t)
		if x.Verbose {
			slog.Info("trial finished", "iteration", i+1, "score", t.Score, "ticks", t.Ticks, "id", t.ID)
		}
		if x.OnTrial != nil {
			x.OnTrial(t)
		}
	}
	return trials, nil
}

func (x Experiment) trial(ctx context.Context, i int) (Trial, error) {
	g, err := x.Build(i)
	if err != nil {
		return Trial{}, fmt.Errorf("build: %w", err)
	}

	t := Trial{ID: uuid.New(), Index: i}
	start := time.Now()
	startTick := g.Epoch()
	// A paused grid does not advance its epoch, so the limit counts steps.
	var steps uint64
	for {
		if x.ShouldStop != nil && x.ShouldStop(g) {
			t.Stopped = true
			break
		}
		if x.MaxTicks > 0 && steps >= x.MaxTicks {
			break
		}
		if err := ctx.Err(); err != nil {
			return t, err
		}
		if err := g.AdvanceTick(); err != nil {
			return t, err
		}
		steps++
	}

	t.Ticks = g.Epoch() - startTick
	t.Duration = time.Since(start)
	t.Census = TakeCensus(g)
	if x.Score != nil {
		t.Score = x.Score(g)
	}
	return t, nil
}

// MeanScore averages the scores of trials; it is 0 for none.
func MeanScore(trials []Trial) float64 {
	if len(trials) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trials {
		sum += t.Score
	}
	return sum / float64(len(trials))
}

// StopAfter returns a StopFunc that ends a run at the given epoch.
func StopAfter(ticks uint64) StopFunc {
	return func(g *grid.Grid) bool { return g.Epoch() >= ticks }
}

// StopWhenExtinct ends a run once no living creature is left.
func StopWhenExtinct(g *grid.Grid) bool {
	return TakeCensus(g).Alive == 0
}

// ScorePopulation scores a run by its living creatures.
func ScorePopulation(g *grid.Grid) float64 {
	return float64(TakeCensus(g).Alive)
}
