package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
)

func quietGrid() *grid.Grid {
	return grid.New(12, 8, grid.WithSeed(1), grid.WithTuning(grid.Tuning{SpawnChance: 0}))
}

func TestStepFiresCallbacks(t *testing.T) {
	e := New(quietGrid())
	e.ReportEvery = 5

	var ticks []uint64
	reports := 0
	e.OnTick = func(_ *grid.Grid, tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(c Census) {
		reports++
		if c.Tick%5 != 0 {
			t.Fatalf("report at tick %d", c.Tick)
		}
	}
	for i := 0; i < 10; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if len(ticks) != 10 || ticks[0] != 1 || ticks[9] != 10 {
		t.Fatalf("ticks = %v", ticks)
	}
	if reports != 2 {
		t.Fatalf("reports = %d, want 2", reports)
	}
	if e.Tick() != 10 {
		t.Fatalf("tick = %d, want 10", e.Tick())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := New(quietGrid())
	e.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for e.Tick() < 3 {
		select {
		case <-deadline:
			t.Fatal("engine made no progress")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if e.Running() {
		t.Fatal("engine still running")
	}
}

func TestStopWhilePaused(t *testing.T) {
	e := New(quietGrid())
	e.SetSpeed(0)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	e.Stop()
	e.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not end a paused engine")
	}
	if e.Tick() != 0 {
		t.Fatalf("paused engine ticked to %d", e.Tick())
	}
}

func TestRunReturnsTickError(t *testing.T) {
	g := quietGrid()
	c := agents.NewCreature(agents.SexMale)
	c.SetMortal(false)
	c.SetRecordingTask(agents.RecordingTask{Outcome: agents.Accomplished}, agents.KindForage)
	if err := g.Insert(3, 3, c); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e := New(g)
	e.Interval = time.Millisecond
	err := e.Run(context.Background())
	if !errors.Is(err, agents.ErrBindingMissing) {
		t.Fatalf("err = %v, want ErrBindingMissing", err)
	}
}

func TestCensus(t *testing.T) {
	g := quietGrid()
	g.Cell(2, 2)[0].Core().Inventory().Pocket(grid.SubstanceNectar, 4)

	m := agents.NewCreature(agents.SexMale)
	m.Inventory().Pocket(grid.SubstanceNectar, 2)
	f := agents.NewCreature(agents.SexFemale)
	f.AddState(agents.NewPregnant(f, 15))
	for i, c := range []*agents.Creature{m, f} {
		if err := g.Insert(5+i, 4, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	c := TakeCensus(g)
	if c.Alive != 2 || c.Males != 1 || c.Females != 1 || c.Pregnant != 1 {
		t.Fatalf("census = %+v", c)
	}
	if c.GroundNectar != 4 || c.CarriedNectar != 2 {
		t.Fatalf("nectar = %d/%d, want 4/2", c.GroundNectar, c.CarriedNectar)
	}
}

func TestExperimentRunsFreshTrials(t *testing.T) {
	built := map[*grid.Grid]bool{}
	x := Experiment{
		Build: func(int) (*grid.Grid, error) {
			g := quietGrid()
			built[g] = true
			return g, nil
		},
		ShouldStop: StopAfter(7),
		Score:      func(g *grid.Grid) float64 { return float64(g.Epoch()) },
		Times:      3,
	}
	trials, err := x.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trials) != 3 || len(built) != 3 {
		t.Fatalf("trials = %d, grids = %d, want 3", len(trials), len(built))
	}
	for i, tr := range trials {
		if tr.Index != i || tr.Ticks != 7 || tr.Score != 7 || !tr.Stopped {
			t.Fatalf("trial %d = %+v", i, tr)
		}
	}
	if trials[0].ID == trials[1].ID {
		t.Fatal("trial ids repeat")
	}
	if MeanScore(trials) != 7 {
		t.Fatalf("mean = %v", MeanScore(trials))
	}
}

func TestExperimentDefaults(t *testing.T) {
	x := Experiment{
		Build:    func(int) (*grid.Grid, error) { return quietGrid(), nil },
		MaxTicks: 4,
	}
	trials, err := x.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trials) != DefaultTimes {
		t.Fatalf("trials = %d, want %d", len(trials), DefaultTimes)
	}
	if trials[0].Ticks != 4 || trials[0].Stopped {
		t.Fatalf("trial = %+v, want cut at MaxTicks", trials[0])
	}

	if _, err := (Experiment{}).Run(context.Background()); !errors.Is(err, ErrNoBuilder) {
		t.Fatalf("err = %v, want ErrNoBuilder", err)
	}
}

func TestExperimentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x := Experiment{Build: func(int) (*grid.Grid, error) { return quietGrid(), nil }}
	trials, err := x.Run(ctx)
	if !errors.Is(err, context.Canceled) || len(trials) != 0 {
		t.Fatalf("trials = %d, err = %v", len(trials), err)
	}
}

func TestExperimentPausedGridHitsMaxTicks(t *testing.T) {
	x := Experiment{
		Build: func(int) (*grid.Grid, error) {
			g := quietGrid()
			g.Pause()
			return g, nil
		},
		Times:    1,
		MaxTicks: 10,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	trials, err := x.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trials) != 1 || trials[0].Ticks != 0 || trials[0].Stopped {
		t.Fatalf("trials = %+v", trials)
	}
}

func TestStepOnPausedGridFiresNothing(t *testing.T) {
	g := quietGrid()
	e := New(g)
	e.ReportEvery = 1
	calls := 0
	e.OnTick = func(*grid.Grid, uint64) { calls++ }
	e.OnReport = func(Census) { calls++ }

	g.Pause()
	for i := 0; i < 3; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if calls != 0 || e.Tick() != 0 {
		t.Fatalf("calls = %d, tick = %d while paused", calls, e.Tick())
	}

	g.Resume()
	if err := e.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if calls != 2 || e.Tick() != 1 {
		t.Fatalf("calls = %d, tick = %d after resume", calls, e.Tick())
	}
}

func TestStopWhenExtinct(t *testing.T) {
	g := quietGrid()
	if !StopWhenExtinct(g) {
		t.Fatal("empty grid is not extinct")
	}
	if err := g.Insert(2, 2, agents.NewCreature(agents.SexFemale)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if StopWhenExtinct(g) || ScorePopulation(g) != 1 {
		t.Fatal("living creature not counted")
	}
}

func TestRecentEvents(t *testing.T) {
	g := quietGrid()
	e := New(g)
	e.KeepEvents = 3

	var forwarded int
	e.OnEvents = func(events []grid.Event) { forwarded += len(events) }
	for i := 0; i < 5; i++ {
		g.Emit(grid.EventSpawn, "x")
		g.Emit(grid.EventDeath, "y")
		if err := e.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if forwarded != 10 {
		t.Fatalf("forwarded = %d, want 10", forwarded)
	}
	all := e.RecentEvents(10)
	if len(all) != 3 {
		t.Fatalf("kept %d events, want 3", len(all))
	}
	last := e.RecentEvents(1)
	if len(last) != 1 || last[0].Category != grid.EventDeath {
		t.Fatalf("latest = %+v", last)
	}
}
