package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "grid.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadWithoutSnapshot(t *testing.T) {
	db := openTemp(t)
	if db.HasSnapshot() {
		t.Fatal("fresh database reports a snapshot")
	}
	if _, err := db.LoadGrid(agents.DefaultTuning()); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestGridRoundTrip(t *testing.T) {
	g := grid.New(15, 10, grid.WithSeed(3), grid.WithTuning(grid.Tuning{SpawnChance: 0}))
	g.Cell(4, 4)[0].Core().Inventory().Pocket(grid.SubstanceNectar, 6)

	bg := agents.NewBreedingGround()
	bt := agents.DefaultBreedingTuning()
	bt.Chance = 0.05
	bg.SetTuning(bt)
	if err := g.Insert(7, 2, bg); err != nil {
		t.Fatalf("insert ground: %v", err)
	}

	f := agents.NewCreature(agents.SexFemale)
	f.Name = "Ada"
	f.Inventory().Pocket(grid.SubstanceNectar, 2)
	if err := g.Insert(3, 3, f); err != nil {
		t.Fatalf("insert creature: %v", err)
	}
	f.AddState(agents.NewPregnant(f, 15))

	for i := 0; i < 5; i++ {
		if err := g.AdvanceTick(); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	db := openTemp(t)
	id, err := db.SaveGrid(g)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" || !db.HasSnapshot() {
		t.Fatal("snapshot not recorded")
	}
	if got, _ := db.GetMeta(MetaSnapshotID); got != id {
		t.Fatalf("snapshot id = %q, want %q", got, id)
	}

	back, err := db.LoadGrid(agents.DefaultTuning(), grid.WithTuning(grid.Tuning{SpawnChance: 0}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Epoch() != g.Epoch() || back.Length() != 15 || back.Height() != 10 {
		t.Fatalf("loaded %dx%d at %d", back.Length(), back.Height(), back.Epoch())
	}
	if back.String() != g.String() {
		t.Fatalf("layout differs:\n%s\nvs\n%s", back.String(), g.String())
	}
	if back.Population() != g.Population() {
		t.Fatalf("population = %d, want %d", back.Population(), g.Population())
	}
	if problems := back.IntegrityCheck(); len(problems) > 0 {
		t.Fatalf("integrity: %v", problems)
	}

	e, ok := back.Entity(f.ID())
	if !ok {
		t.Fatal("creature handle not restored")
	}
	c := e.(*agents.Creature)
	if c.Name != "Ada" || c.Sex() != agents.SexFemale || c.Age() != f.Age() {
		t.Fatalf("creature = %s/%s/%d", c.Name, c.Sex(), c.Age())
	}
	if c.CountSubstance(grid.SubstanceNectar) != 2 || !c.HasState(agents.StatePregnant) {
		t.Fatal("creature inventory or state lost")
	}
	if c.LocalTime() != f.LocalTime() {
		t.Fatalf("local time = %d, want %d", c.LocalTime(), f.LocalTime())
	}

	var restored *agents.BreedingGround
	for _, e := range back.Cell(7, 2) {
		if b, ok := e.(*agents.BreedingGround); ok {
			restored = b
		}
	}
	if restored == nil || restored.Tuning().Chance != 0.05 {
		t.Fatal("breeding ground tuning lost")
	}
	if back.Cell(4, 4)[0].Core().CountSubstance(grid.SubstanceNectar) != 6 {
		t.Fatal("ground nectar lost")
	}

	// A restored grid keeps running and hands out fresh handles.
	if err := back.AdvanceTick(); err != nil {
		t.Fatalf("tick after load: %v", err)
	}
	before := back.Population()
	if err := back.Insert(10, 6, grid.NewBlock()); err != nil {
		t.Fatalf("insert after load: %v", err)
	}
	if back.Population() != before+1 {
		t.Fatal("new entity reused a restored handle")
	}
}

func TestSaveReplacesSnapshot(t *testing.T) {
	db := openTemp(t)
	first, err := db.SaveGrid(grid.New(6, 6))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := db.SaveGrid(grid.New(8, 5))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatal("snapshot ids repeat")
	}
	g, err := db.LoadGrid(agents.DefaultTuning())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.Length() != 8 || g.Height() != 5 || g.Population() != 40 {
		t.Fatalf("loaded %dx%d with %d entities", g.Length(), g.Height(), g.Population())
	}
}

func TestEvents(t *testing.T) {
	db := openTemp(t)
	if err := db.SaveEvents(nil); err != nil {
		t.Fatalf("save none: %v", err)
	}
	in := []grid.Event{
		{Tick: 1, Category: grid.EventSpawn, Description: "a"},
		{Tick: 2, Category: grid.EventMating, Description: "b"},
		{Tick: 3, Category: grid.EventBirth, Description: "c"},
	}
	if err := db.SaveEvents(in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(out) != 2 || out[0] != in[2] || out[1] != in[1] {
		t.Fatalf("recent = %+v", out)
	}
}

func TestMeta(t *testing.T) {
	db := openTemp(t)
	if _, err := db.GetMeta("missing"); err == nil {
		t.Fatal("missing key returned no error")
	}
	if err := db.SaveMeta("k", "1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveMeta("k", "2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, err := db.GetMeta("k"); err != nil || v != "2" {
		t.Fatalf("meta = %q, %v", v, err)
	}
}
