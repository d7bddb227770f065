// Command gridexperiment runs the configured scenario several times from a
// fresh world and reports the score of each run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridlife/internal/config"
	"github.com/talgya/gridlife/internal/engine"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config (defaults when empty)")
	times := flag.Int("times", engine.DefaultTimes, "number of trials")
	ticks := flag.Uint64("ticks", 1000, "ticks per trial")
	stopWhen := flag.String("stop", "ticks", "stop rule: ticks or extinct")
	score := flag.String("score", "population", "score: population or births")
	asJSON := flag.Bool("json", false, "print trials as JSON")
	verbose := flag.Bool("v", false, "log each trial")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
	}

	x := engine.Experiment{
		Times:    *times,
		MaxTicks: *ticks,
		Verbose:  *verbose,
	}

	births := map[*grid.Grid]int{}
	x.Build = func(trial int) (*grid.Grid, error) {
		c := cfg
		if c.World.Seed != 0 {
			c.World.Seed += int64(trial)
		}
		w, err := world.Build(c)
		if err != nil {
			return nil, err
		}
		return w.Grid, nil
	}

	switch *stopWhen {
	case "ticks":
	case "extinct":
		x.ShouldStop = engine.StopWhenExtinct
	default:
		slog.Error("unknown stop rule", "stop", *stopWhen)
		os.Exit(2)
	}

	switch *score {
	case "population":
		x.Score = engine.ScorePopulation
	case "births":
		// Count births from the grid's journal as it drains each tick.
		x.ShouldStop = countBirths(x.ShouldStop, births)
		x.Score = func(g *grid.Grid) float64 { return float64(births[g]) }
	default:
		slog.Error("unknown score", "score", *score)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trials, err := x.Run(ctx)
	if werr := report(os.Stdout, trials, *asJSON); werr != nil {
		slog.Error("write results", "error", werr)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("experiment stopped", "error", err)
		os.Exit(1)
	}
}

// report prints trials as indented JSON or as one line per iteration
// followed by the mean score.
func report(w io.Writer, trials []engine.Trial, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(trials); err != nil {
			return fmt.Errorf("encode trials: %w", err)
		}
		return nil
	}
	for _, t := range trials {
		if _, err := fmt.Fprintf(w, "Iteration: %d  Score: %g  Ticks: %s  Alive: %d  (%s)\n",
			t.Index+1, t.Score, humanize.Comma(int64(t.Ticks)), t.Census.Alive, t.ID); err != nil {
			return err
		}
	}
	if len(trials) > 0 {
		if _, err := fmt.Fprintf(w, "Mean score over %d trials: %.3f\n", len(trials), engine.MeanScore(trials)); err != nil {
			return err
		}
	}
	return nil
}

// countBirths wraps stop so every check drains the grid's events and tallies
// births per grid.
func countBirths(stop engine.StopFunc, births map[*grid.Grid]int) engine.StopFunc {
	return func(g *grid.Grid) bool {
		for _, e := range g.DrainEvents() {
			if e.Category == grid.EventBirth {
				births[g]++
			}
		}
		return stop != nil && stop(g)
	}
}
