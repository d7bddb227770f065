// Package world assembles a runnable simulation from configuration: the
// grid, its terrain, the creation gatekeeper and the starting population.
package world

import (
	"fmt"
	"log/slog"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/config"
	"github.com/talgya/gridlife/internal/entropy"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/persistence"
	"github.com/talgya/gridlife/internal/planner"
	"github.com/talgya/gridlife/internal/terrain"
)

// World is a grid wired to its Steward.
type World struct {
	Grid    *grid.Grid
	Steward *planner.Steward
	Seed    int64
	Terrain terrain.Report
	Placed  int
}

// Build generates a fresh world. A zero world seed is replaced by a random
// one, reported in World.Seed. The terrain seed defaults to the world seed.
func Build(cfg config.Config) (*World, error) {
	seed := entropy.ResolveSeed(cfg.World.Seed)
	g := grid.New(cfg.World.Length, cfg.World.Height,
		grid.WithSeed(seed),
		grid.WithTuning(cfg.GridTuning()),
	)

	st := planner.New(cfg.PlannerConfig(), nil)
	st.Attach(g)

	tc := cfg.Terrain
	if tc.Seed == 0 {
		tc.Seed = seed
	}
	report, err := terrain.Apply(g, tc, cfg.BreedingTuning())
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}

	tuning := cfg.CreatureTuning()
	placed := g.Populate(func() grid.Entity {
		return agents.RandomCreature(g.Rand(), tuning)
	}, cfg.World.Population)

	slog.Info("world built",
		"seed", seed,
		"size", fmt.Sprintf("%dx%d", g.Length(), g.Height()),
		"layout", tc.Layout,
		"walls", report.Walls,
		"deposits", report.Deposits,
		"breeding_grounds", report.BreedingGrounds,
		"creatures", placed,
	)
	return &World{Grid: g, Steward: st, Seed: seed, Terrain: report, Placed: placed}, nil
}

// Restore loads the saved grid from db and re-equips every creature with a
// fresh Steward. Learned weights are not persisted, so the model starts
// untrained.
func Restore(cfg config.Config, db *persistence.DB) (*World, error) {
	seed := entropy.ResolveSeed(cfg.World.Seed)
	g, err := db.LoadGrid(cfg.CreatureTuning(),
		grid.WithSeed(seed),
		grid.WithTuning(cfg.GridTuning()),
	)
	if err != nil {
		return nil, err
	}

	st := planner.New(cfg.PlannerConfig(), nil)
	st.Attach(g)
	creatures := g.FindAllEntitiesByKind(grid.KindCreature)
	for _, e := range creatures {
		if c, ok := e.(*agents.Creature); ok {
			st.Equip(c)
		}
	}

	slog.Info("world restored", "tick", g.Epoch(), "creatures", len(creatures))
	return &World{Grid: g, Steward: st, Seed: seed, Placed: len(creatures)}, nil
}
