// Command gridsim runs a grid simulation in real time, journaling its
// events and serving its state over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridlife/internal/api"
	"github.com/talgya/gridlife/internal/config"
	"github.com/talgya/gridlife/internal/engine"
	"github.com/talgya/gridlife/internal/eventlog"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/persistence"
	"github.com/talgya/gridlife/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config (defaults when empty)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath); err != nil {
		slog.Error("gridsim failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	} else {
		cfg.ApplyEnv()
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Persistence.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Persistence.Path), 0o755); err != nil {
			return err
		}
		var err error
		if db, err = persistence.Open(cfg.Persistence.Path); err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Persistence.Path)
	}

	// ── World (restored when a snapshot exists) ───────────────────────
	var w *world.World
	var err error
	if db != nil && db.HasSnapshot() {
		slog.Info("found saved grid, loading...")
		w, err = world.Restore(cfg, db)
	} else {
		w, err = world.Build(cfg)
	}
	if err != nil {
		return err
	}

	// ── Event journal ─────────────────────────────────────────────────
	var journal *eventlog.Writer
	if cfg.EventLog.Dir != "" {
		journal = eventlog.NewWriter(cfg.EventLog.Dir, cfg.EventLog.Prefix)
		defer journal.Close()
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(w.Grid)
	eng.Interval = time.Duration(cfg.Engine.IntervalMs) * time.Millisecond
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.SetSpeed(cfg.Engine.Speed)

	eng.OnEvents = func(events []grid.Event) {
		if journal != nil {
			if err := journal.WriteEvents(events); err != nil {
				slog.Error("journal write failed", "error", err)
			}
		}
		if db != nil {
			if err := db.SaveEvents(events); err != nil {
				slog.Error("event save failed", "error", err)
			}
		}
	}
	if db != nil && cfg.Engine.SnapshotEvery > 0 {
		eng.OnTick = func(g *grid.Grid, tick uint64) {
			if tick%cfg.Engine.SnapshotEvery != 0 {
				return
			}
			if _, err := db.SaveGrid(g); err != nil {
				slog.Error("periodic save failed", "tick", tick, "error", err)
			}
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Addr != "" {
		if cfg.API.AdminKey == "" {
			slog.Warn(config.AdminKeyEnv + " not set; admin POST endpoints will be disabled")
		}
		srv := (&api.Server{
			Eng:           eng,
			Steward:       w.Steward,
			DB:            db,
			Addr:          cfg.API.Addr,
			AdminKey:      cfg.API.AdminKey,
			AdminRate:     cfg.API.AdminRate,
			AdminWindow:   time.Duration(cfg.API.AdminWindowS) * time.Second,
			EventsDefault: cfg.API.EventsDefault,
		}).Start()
		defer srv.Close()
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\ngridlife is alive: %s creatures on a %dx%d grid (seed %d).\n",
		humanize.Comma(int64(w.Placed)), w.Grid.Length(), w.Grid.Height(), w.Seed)
	if cfg.API.Addr != "" {
		fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.API.Addr)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runErr := eng.Run(ctx)

	// Final save on shutdown.
	if db != nil {
		slog.Info("final save...")
		if err := eng.Update(func(g *grid.Grid) error {
			_, err := db.SaveGrid(g)
			return err
		}); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}

	final := engine.Census{}
	eng.View(func(g *grid.Grid) { final = engine.TakeCensus(g) })
	fmt.Printf("Simulation stopped at tick %s with %s creatures alive.\n",
		humanize.Comma(int64(final.Tick)), humanize.Comma(int64(final.Alive)))
	return runErr
}
