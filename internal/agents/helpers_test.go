package agents

import (
	"testing"

	"github.com/talgya/gridlife/internal/grid"
)

// quietGrid builds a grid whose blanks never spawn substance.
func quietGrid(length, height int) *grid.Grid {
	return grid.New(length, height, grid.WithSeed(42), grid.WithTuning(grid.Tuning{SpawnChance: 0}))
}

func immortal(sex Sex) *Creature {
	c := NewCreature(sex)
	t := DefaultTuning()
	t.Mortality = 0
	c.SetTuning(t)
	return c
}

func place(t *testing.T, g *grid.Grid, e grid.Entity, x, y int) {
	t.Helper()
	if err := g.Insert(x, y, e); err != nil {
		t.Fatalf("insert at (%d,%d): %v", x, y, err)
	}
}

func seedNectar(g *grid.Grid, x, y, n int) {
	g.Cell(x, y)[0].Core().Inventory().Pocket(grid.SubstanceNectar, n)
}

func tick(t *testing.T, g *grid.Grid) {
	t.Helper()
	if err := g.AdvanceTick(); err != nil {
		t.Fatalf("tick %d: %v", g.Epoch(), err)
	}
}

// forageOnce queues a single nectar forage the first time it is asked.
func forageOnce() PlanFunc {
	planned := false
	return func(c *Creature) {
		if planned {
			return
		}
		planned = true
		f := NewForage(c)
		_ = f.SetObjective(Objective{ParamSubstance: grid.SubstanceNectar}, true)
		c.QueueAction(f)
	}
}
