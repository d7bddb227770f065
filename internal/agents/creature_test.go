package agents

import (
	"testing"

	"github.com/talgya/gridlife/internal/grid"
)

func TestCanMateIsSymmetric(t *testing.T) {
	type setup func(m, f *Creature)
	cases := map[string]setup{
		"plain":         func(m, f *Creature) {},
		"pregnant":      func(m, f *Creature) { f.AddState(NewPregnant(f, 15)) },
		"male cooldown": func(m, f *Creature) { m.AddState(NewCooldown(m, 10)) },
		"dead male":     func(m, f *Creature) { m.Die() },
		"dead female":   func(m, f *Creature) { f.Die() },
		"pregnant, cooldown": func(m, f *Creature) {
			f.AddState(NewPregnant(f, 15))
			m.AddState(NewCooldown(m, 10))
		},
	}
	for name, prepare := range cases {
		m, f := NewCreature(SexMale), NewCreature(SexFemale)
		prepare(m, f)
		if m.CanMate(f) != f.CanMate(m) {
			t.Fatalf("%s: CanMate(m,f)=%v CanMate(f,m)=%v", name, m.CanMate(f), f.CanMate(m))
		}
	}

	a, b := NewCreature(SexMale), NewCreature(SexMale)
	if a.CanMate(b) {
		t.Fatalf("same sex pair can mate")
	}
}

func TestWillMateRules(t *testing.T) {
	nectar := grid.SubstanceNectar

	m, f := NewCreature(SexMale), NewCreature(SexFemale)
	if f.WillMate(m) {
		t.Fatalf("female accepts with no nectar on either side")
	}
	m.Inventory().Pocket(nectar, 2)
	f.Inventory().Pocket(nectar, 1)
	if !f.WillMate(m) || !m.WillMate(f) {
		t.Fatalf("poorer female or free male refused")
	}
	m.AddState(NewCooldown(m, 10))
	if m.WillMate(f) {
		t.Fatalf("male under cooldown consents")
	}

	rich, poor := NewCreature(SexFemale), NewCreature(SexMale)
	rich.Inventory().Pocket(nectar, 5)
	poor.Inventory().Pocket(nectar, 1)
	accepted := 0
	const trials = 4000
	for i := 0; i < trials; i++ {
		if rich.WillMate(poor) {
			accepted++
		}
	}
	// 1 / (3*5 + 1)
	if rate := float64(accepted) / trials; rate < 0.03 || rate > 0.10 {
		t.Fatalf("acceptance rate = %.3f, want about 0.0625", rate)
	}
}

func TestStatesFireOnce(t *testing.T) {
	c := NewCreature(SexMale)
	cd := NewCooldown(c, 3)
	c.AddState(cd)
	for i := 0; i < 2; i++ {
		cd.Affect()
	}
	if !c.HasState(StateCooldown) {
		t.Fatalf("cooldown removed early")
	}
	cd.Affect()
	if c.HasState(StateCooldown) {
		t.Fatalf("cooldown not removed at timing")
	}

	f := NewCreature(SexFemale)
	p := NewPregnant(f, 2)
	f.AddState(p)
	p.Affect()
	if len(f.Queue()) != 0 {
		t.Fatalf("birth queued early")
	}
	p.Affect()
	q := f.Queue()
	if len(q) != 1 || q[0].Kind() != KindGiveBirth {
		t.Fatalf("queue after pregnancy = %v", q)
	}
	p.Affect()
	if len(f.Queue()) != 1 {
		t.Fatalf("pregnancy fired twice")
	}
}

func TestDuplicateStatesRunIndependently(t *testing.T) {
	c := NewCreature(SexMale)
	a, b := NewCooldown(c, 1), NewCooldown(c, 3)
	c.AddState(a)
	c.AddState(b)
	g := quietGrid(6, 6)
	place(t, g, c, 2, 2)
	tick(t, g)
	if got := len(c.States()); got != 1 {
		t.Fatalf("states after one tick = %d, want 1", got)
	}
}

func TestCorpseDissolvesAfterGrace(t *testing.T) {
	g := quietGrid(8, 8)
	c := NewCreature(SexMale)
	place(t, g, c, 3, 3)
	c.Die()
	if c.Alive() {
		t.Fatalf("creature survived Die")
	}

	grace := int(c.Tuning().DeathGrace)
	for i := 0; i < grace; i++ {
		tick(t, g)
	}
	if !c.Placed() {
		t.Fatalf("corpse removed before the grace period ended")
	}
	tick(t, g)
	if c.Placed() || g.CountKind(grid.KindCreature) != 0 {
		t.Fatalf("corpse still on the grid")
	}
}

func TestImmortalCreatureIgnoresDie(t *testing.T) {
	c := NewCreature(SexFemale)
	c.SetMortal(false)
	c.Die()
	if !c.Alive() {
		t.Fatalf("immortal creature died")
	}
}

func TestGiveBirthVetoedStillEndsPregnancy(t *testing.T) {
	g := quietGrid(8, 8)
	f := immortal(SexFemale)
	place(t, g, f, 3, 3)
	p := NewPregnant(f, 15)
	f.AddState(p)

	g.SetGatekeeper(grid.GatekeeperFunc(func(e grid.Entity) bool {
		_, isCreature := e.(*Creature)
		return isCreature
	}))
	b := NewGiveBirth(f, p)
	r := RunToResult(b)
	if !r.Done || r.Accomplished {
		t.Fatalf("vetoed birth result = %+v", r)
	}
	if f.HasState(StatePregnant) {
		t.Fatalf("pregnancy survived the birth attempt")
	}
	if g.CountKind(grid.KindCreature) != 1 {
		t.Fatalf("vetoed child was placed")
	}
}

func TestGiveBirthNeedsFreeNeighbor(t *testing.T) {
	g := quietGrid(8, 8)
	f := immortal(SexFemale)
	place(t, g, f, 3, 3)
	for _, n := range f.Position().Neighbors() {
		place(t, g, grid.NewBlock(), n.X, n.Y)
	}
	b := NewGiveBirth(f, NewPregnant(f, 1))
	if b.Feasible() {
		t.Fatalf("birth feasible with no room")
	}
}

func TestBreedingGroundEmitsCreature(t *testing.T) {
	g := quietGrid(8, 8)
	bg := NewBreedingGround()
	bt := DefaultBreedingTuning()
	bt.Chance = 1
	bg.SetTuning(bt)
	place(t, g, bg, 4, 4)

	tick(t, g)
	top, ok := g.Top(4, 4).(*Creature)
	if !ok {
		t.Fatalf("no creature on the breeding ground")
	}
	if top.LocalTime() != g.Epoch() {
		t.Fatalf("newcomer local time %d, epoch %d", top.LocalTime(), g.Epoch())
	}
	if top.Name == "" {
		t.Fatalf("newcomer has no name")
	}

	tick(t, g)
	if n := g.CountKind(grid.KindCreature); n != 1 {
		t.Fatalf("occupied breeding ground emitted again: %d creatures", n)
	}
	if v := g.IntegrityCheck(); len(v) != 0 {
		t.Fatalf("violations: %v", v)
	}
}

func TestCreatureRecordRoundTrip(t *testing.T) {
	c := NewCreature(SexFemale)
	c.Name = "Freya Moss"
	c.Inventory().Pocket(grid.SubstanceNectar, 4)
	c.AddState(NewPregnant(c, 15))
	c.SetAge(12)

	back := RestoreCreature(c.Record(), DefaultTuning())
	if back.Name != c.Name || back.Sex() != SexFemale || back.Age() != 12 {
		t.Fatalf("restored %+v", back.Record())
	}
	if back.CountSubstance(grid.SubstanceNectar) != 4 || !back.HasState(StatePregnant) {
		t.Fatalf("restored inventory or states lost")
	}
	if back.States()[0].Subject() != back {
		t.Fatalf("restored state points at the wrong creature")
	}
}

func TestMatingScenario(t *testing.T) {
	g := quietGrid(60, 40)
	male, female := immortal(SexMale), immortal(SexFemale)
	male.Inventory().Pocket(grid.SubstanceNectar, 3)
	// Court once: after the first mating the male idles.
	courted := false
	male.SetPlan(func(c *Creature) {
		if c.HasState(StateCooldown) {
			courted = true
		}
		if !courted {
			c.QueueAction(NewGoMating(c))
		}
	})
	place(t, g, male, 10, 10)
	place(t, g, female, 13, 10)

	mated := 0
	for i := 1; i <= 5; i++ {
		tick(t, g)
		if female.HasState(StatePregnant) {
			mated = i
			break
		}
	}
	if mated == 0 {
		t.Fatalf("no mating within 5 ticks")
	}
	if !male.HasState(StateCooldown) {
		t.Fatalf("male has no cooldown after mating")
	}
	if n := g.CountKind(grid.KindCreature); n != 2 {
		t.Fatalf("population after mating = %d", n)
	}

	born := 0
	for i := 1; i <= 16; i++ {
		tick(t, g)
		n := g.CountKind(grid.KindCreature)
		if n > 3 {
			t.Fatalf("population jumped to %d", n)
		}
		if n == 3 {
			born = i
			break
		}
	}
	if born == 0 {
		t.Fatalf("no birth within 16 ticks of mating")
	}
	if born < 13 {
		t.Fatalf("birth %d ticks after mating, pregnancy is 15 ticks", born)
	}
	if female.HasState(StatePregnant) {
		t.Fatalf("mother still pregnant after birth")
	}
	if v := g.IntegrityCheck(); len(v) != 0 {
		t.Fatalf("violations: %v", v)
	}
}
