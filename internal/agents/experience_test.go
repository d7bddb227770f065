package agents

import (
	"errors"
	"testing"

	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/memory"
)

type countingModel struct {
	fits int
	rows int
}

func (m *countingModel) Fit(X [][]float64, y []bool) error {
	m.fits++
	m.rows = len(X)
	return nil
}

func (m *countingModel) Predict([]float64) (bool, error) { return true, nil }

func alwaysGoMating(c *Creature) { c.QueueAction(NewGoMating(c)) }

func constant(v float64) FeatureExtractor {
	return FeatureFunc(func(*Creature) float64 { return v })
}

func TestBatchRetrainAndReset(t *testing.T) {
	const batch = 3
	g := quietGrid(10, 10)
	model := &countingModel{}
	c := immortal(SexMale)
	c.SetPlan(alwaysGoMating)
	c.SetRecordingTask(RecordingTask{
		Features: []FeatureExtractor{constant(1), constant(0)},
		Outcome:  Accomplished,
	}, KindGoMating)
	c.Bind(Bindings{
		PrivateModel: model,
		MemoryScope:  ScopePrivate,
		ModelScope:   ScopePrivate,
		BatchSize:    batch,
	})
	place(t, g, c, 4, 4)

	for i := 1; i < batch; i++ {
		tick(t, g)
		if model.fits != 0 {
			t.Fatalf("fit after %d records", i)
		}
		if n := c.PrivateMemory().Complete(KindGoMating.String()); n != i {
			t.Fatalf("complete records after %d ticks = %d", i, n)
		}
	}

	tick(t, g)
	if model.fits != 1 || model.rows != batch {
		t.Fatalf("fits = %d with %d rows, want 1 with %d", model.fits, model.rows, batch)
	}
	if n := c.PrivateMemory().Len(); n != 0 {
		t.Fatalf("records after retrain = %d, want 0", n)
	}
}

func TestPublicMemoryIsShared(t *testing.T) {
	g := quietGrid(12, 12)
	shared := memory.New(100)
	model := &countingModel{}
	task := RecordingTask{Features: []FeatureExtractor{constant(1)}, Outcome: Accomplished}

	for i, x := range []int{3, 8} {
		c := immortal(Sex(i % 2))
		c.SetPlan(alwaysGoMating)
		c.SetRecordingTask(task, KindGoMating)
		c.Bind(Bindings{
			PublicMemory: shared,
			PublicModel:  model,
			MemoryScope:  ScopePublic,
			ModelScope:   ScopePublic,
			BatchSize:    100,
		})
		place(t, g, c, x, 3)
	}

	tick(t, g)
	if n := shared.Len(); n != 2 {
		t.Fatalf("shared records = %d, want one per creature", n)
	}
}

func TestMissingBindingIsFatal(t *testing.T) {
	g := quietGrid(8, 8)
	c := immortal(SexMale)
	c.SetRecordingTask(RecordingTask{Features: []FeatureExtractor{constant(1)}}, KindGoMating)
	c.Bind(Bindings{MemoryScope: ScopePublic, ModelScope: ScopePrivate})
	place(t, g, c, 3, 3)

	if err := g.AdvanceTick(); !errors.Is(err, ErrBindingMissing) {
		t.Fatalf("tick error = %v, want ErrBindingMissing", err)
	}
}

func TestUnrecordedCreatureNeedsNoBindings(t *testing.T) {
	g := quietGrid(8, 8)
	c := immortal(SexMale)
	c.SetPlan(alwaysGoMating)
	place(t, g, c, 3, 3)
	tick(t, g)
}

func TestDroppedActionDiscardsRecord(t *testing.T) {
	g := quietGrid(10, 10)
	c := immortal(SexFemale)
	c.SetRecordingTask(RecordingTask{Features: []FeatureExtractor{constant(1)}, Outcome: Accomplished}, KindMoveTo)
	c.Bind(Bindings{PrivateModel: &countingModel{}, MemoryScope: ScopePrivate, ModelScope: ScopePrivate, BatchSize: 10})
	place(t, g, c, 2, 2)

	// Unreachable: a border cell is never passable.
	m := NewMoveTo(c)
	_ = m.SetObjective(Objective{ParamTarget: grid.Coord{X: 0, Y: 0}}, true)
	c.QueueAction(m)
	if c.PrivateMemory().Len() != 1 {
		t.Fatalf("state not recorded at enqueue")
	}

	tick(t, g)
	if len(c.Queue()) != 0 {
		t.Fatalf("infeasible move still queued")
	}
	if c.PrivateMemory().Len() != 0 {
		t.Fatalf("incomplete record kept")
	}
}

func TestFeaturesFollowTask(t *testing.T) {
	c := NewCreature(SexMale)
	if _, ok := c.Features(KindForage); ok {
		t.Fatalf("features for an unrecorded kind")
	}
	c.SetRecordingTask(RecordingTask{Features: []FeatureExtractor{
		constant(2),
		FeatureFunc(func(c *Creature) float64 { return float64(c.CountSubstance(grid.SubstanceNectar)) }),
	}}, KindForage, KindGoMating)
	c.Inventory().Pocket(grid.SubstanceNectar, 5)

	x, ok := c.Features(KindGoMating)
	if !ok || len(x) != 2 || x[0] != 2 || x[1] != 5 {
		t.Fatalf("features = %v, %v", x, ok)
	}
}
