package world

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/config"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/persistence"
	"github.com/talgya/gridlife/internal/terrain"
)

func TestBuildClassic(t *testing.T) {
	cfg := config.Default()
	cfg.World.Seed = 11

	w, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if w.Seed != 11 || w.Terrain.Walls != 59 {
		t.Fatalf("seed %d, walls %d", w.Seed, w.Terrain.Walls)
	}
	if w.Placed == 0 || w.Placed > 20 {
		t.Fatalf("placed = %d", w.Placed)
	}
	if int(w.Steward.Equipped()) != w.Placed {
		t.Fatalf("equipped %d of %d", w.Steward.Equipped(), w.Placed)
	}
	for i := 0; i < 50; i++ {
		if err := w.Grid.AdvanceTick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if problems := w.Grid.IntegrityCheck(); len(problems) > 0 {
		t.Fatalf("integrity: %v", problems)
	}
}

func TestBuildDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.World.Seed = 5
	cfg.Terrain.Layout = terrain.LayoutNoise
	cfg.Terrain.BreedingGrounds = 2

	a, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.Grid.String() != b.Grid.String() {
		t.Fatal("same seed built different worlds")
	}
}

func TestBuildRejectsSmallClassic(t *testing.T) {
	cfg := config.Default()
	cfg.World.Length, cfg.World.Height = 20, 20
	if _, err := Build(cfg); !errors.Is(err, terrain.ErrTooSmall) {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestRestoreReequips(t *testing.T) {
	cfg := config.Default()
	cfg.World.Seed = 3
	w, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	db, err := persistence.Open(filepath.Join(t.TempDir(), "w.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.SaveGrid(w.Grid); err != nil {
		t.Fatalf("save: %v", err)
	}

	r, err := Restore(cfg, db)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if r.Placed != w.Grid.CountKind(grid.KindCreature) {
		t.Fatalf("restored %d creatures", r.Placed)
	}
	for _, e := range r.Grid.FindAllEntitiesByKind(grid.KindCreature) {
		c := e.(*agents.Creature)
		if c.Sex() == agents.SexMale && !c.Recording(agents.KindGoMating) {
			t.Fatalf("%s not re-equipped", c.Label())
		}
	}
	for i := 0; i < 20; i++ {
		if err := r.Grid.AdvanceTick(); err != nil {
			t.Fatalf("tick after restore: %v", err)
		}
	}
}
