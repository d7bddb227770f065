package agents

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/memory"
)

// Creature is a mobile, mortal agent. It blocks the cell it stands on.
type Creature struct {
	grid.Base
	Name string `json:"name"`

	sex    Sex
	alive  bool
	mortal bool
	diedAt uint64
	tuning Tuning

	states []*State
	queue  []Action
	log    ActionLog
	plan   PlanFunc

	tasks    map[ActionKind]RecordingTask
	private  *memory.Store
	bindings Bindings
}

// NewCreature creates a living, mortal creature with default tuning.
func NewCreature(sex Sex) *Creature {
	t := DefaultTuning()
	return &Creature{
		Base:    grid.NewBase(grid.KindCreature, false, false),
		sex:     sex,
		alive:   true,
		mortal:  true,
		tuning:  t,
		log:     ActionLog{limit: t.LogSize},
		tasks:   make(map[ActionKind]RecordingTask),
		private: memory.New(memory.DefaultCapacity),
	}
}

func (c *Creature) Sex() Sex              { return c.sex }
func (c *Creature) Alive() bool           { return c.alive }
func (c *Creature) Mortal() bool          { return c.mortal }
func (c *Creature) SetMortal(mortal bool) { c.mortal = mortal }
func (c *Creature) Tuning() Tuning        { return c.tuning }
func (c *Creature) Log() *ActionLog       { return &c.log }
func (c *Creature) SetPlan(plan PlanFunc) { c.plan = plan }
func (c *Creature) Symbol() byte          { return '@' }

// SetTuning replaces the lifecycle constants.
func (c *Creature) SetTuning(t Tuning) {
	c.tuning = t
	c.log.limit = t.LogSize
}

// Label returns the name, or a handle-based label for unnamed creatures.
func (c *Creature) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("creature #%d", c.ID())
}

// DiedAt returns the local time of death; ok is false while alive.
func (c *Creature) DiedAt() (tick uint64, ok bool) {
	return c.diedAt, !c.alive
}

// HasState reports whether any attached state is of kind.
func (c *Creature) HasState(kind StateKind) bool {
	for _, s := range c.states {
		if s.kind == kind {
			return true
		}
	}
	return false
}

// AddState attaches s. Duplicates of one kind are kept and run independently.
func (c *Creature) AddState(s *State) {
	c.states = append(c.states, s)
}

// RemoveState detaches s. It is a no-op when s is not attached.
func (c *Creature) RemoveState(s *State) {
	for i, cur := range c.states {
		if cur == s {
			c.states = append(c.states[:i], c.states[i+1:]...)
			return
		}
	}
}

// States returns the attached states in attachment order.
func (c *Creature) States() []*State {
	out := make([]*State, len(c.states))
	copy(out, c.states)
	return out
}

// Queue returns the pending actions, head first.
func (c *Creature) Queue() []Action {
	out := make([]Action, len(c.queue))
	copy(out, c.queue)
	return out
}

// QueueFront puts a at the head of the queue. Experience is not recorded.
func (c *Creature) QueueFront(a Action) {
	c.queue = append([]Action{a}, c.queue...)
}

// Die marks the creature dead. Immortal creatures ignore it.
func (c *Creature) Die() {
	if !c.mortal || !c.alive {
		return
	}
	c.alive = false
	c.diedAt = c.LocalTime()
	for _, a := range c.queue {
		c.forgetRecord(a)
	}
	c.queue = nil

	if g := c.Grid(); g != nil {
		slog.Debug("creature died", "tick", g.Epoch(), "creature", c.ID(), "age", c.Age())
		g.Emit(grid.EventDeath, fmt.Sprintf("%s died at age %d", c.Label(), c.Age()))
	}
}

// Live runs one tick of the creature's life: states, clock, mortality,
// planning, action execution and finally retraining. Only a missing
// learning binding is reported as an error.
func (c *Creature) Live(tick uint64) error {
	for _, s := range c.States() {
		s.Affect()
	}
	c.Advance()

	if !c.alive {
		if c.LocalTime()-c.diedAt > c.tuning.DeathGrace {
			c.dissolve()
		}
		return nil
	}

	if c.mortal && c.Age() > c.tuning.MinDeathAge && c.tuning.Mortality > 0 &&
		c.rand().Float64() < c.tuning.Mortality {
		c.Die()
		return nil
	}

	if len(c.queue) == 0 && c.plan != nil {
		c.plan(c)
	}

	if len(c.queue) > 0 {
		c.performAndRecord(c.queue[0])
		for chained := 0; len(c.queue) > 0 && c.queue[0].Instant() && chained < c.tuning.MaxChain; chained++ {
			c.performAndRecord(c.queue[0])
		}
	}

	return c.RetrainIfReady()
}

// perform executes the head action a and dequeues it when it is done or can
// no longer be carried out.
func (c *Creature) perform(a Action) (r Result, dequeued bool) {
	r = RunToResult(a)
	if r.Done || !a.Feasible() {
		c.dequeue(a)
		var tick uint64
		if g := c.Grid(); g != nil {
			tick = g.Epoch()
		}
		c.log.Add(LogEntry{Tick: tick, Kind: a.Kind(), Done: r.Done, Accomplished: r.Accomplished})
		return r, true
	}
	return r, false
}

func (c *Creature) dequeue(a Action) {
	for i, queued := range c.queue {
		if queued == a {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

func (c *Creature) dissolve() {
	g := c.Grid()
	if g == nil {
		return
	}
	slog.Debug("corpse dissolved", "tick", g.Epoch(), "creature", c.ID())
	g.Remove(c)
}

var fallbackRand = rand.New(rand.NewSource(1))

// rand returns the grid's random source, or a package fallback for
// creatures that are not placed.
func (c *Creature) rand() *rand.Rand {
	if g := c.Grid(); g != nil {
		return g.Rand()
	}
	return fallbackRand
}

// CreatureRecord is the persisted form of a creature. Queued actions are not
// kept; a restored creature plans afresh.
type CreatureRecord struct {
	Name      string         `json:"name"`
	Sex       Sex            `json:"sex"`
	Alive     bool           `json:"alive"`
	Mortal    bool           `json:"mortal"`
	DiedAt    uint64         `json:"died_at"`
	Age       uint64         `json:"age"`
	Inventory grid.Inventory `json:"inventory"`
	States    []StateRecord  `json:"states,omitempty"`
}

// Record captures the creature for a snapshot.
func (c *Creature) Record() CreatureRecord {
	r := CreatureRecord{
		Name:      c.Name,
		Sex:       c.sex,
		Alive:     c.alive,
		Mortal:    c.mortal,
		DiedAt:    c.diedAt,
		Age:       c.Age(),
		Inventory: *c.Inventory(),
	}
	for _, s := range c.states {
		r.States = append(r.States, s.Record())
	}
	return r
}

// RestoreCreature rebuilds a creature from its record.
func RestoreCreature(r CreatureRecord, tuning Tuning) *Creature {
	c := NewCreature(r.Sex)
	c.SetTuning(tuning)
	c.Name = r.Name
	c.alive = r.Alive
	c.mortal = r.Mortal
	c.diedAt = r.DiedAt
	c.SetAge(r.Age)
	*c.Inventory() = r.Inventory
	for _, sr := range r.States {
		c.states = append(c.states, &State{kind: sr.Kind, subject: c, duration: sr.Duration, timing: sr.Timing})
	}
	return c
}
