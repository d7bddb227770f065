// Package planner wires freshly created creatures to the shared learning
// resources and gives them a planning callback. The Steward is installed as
// the grid's creation gatekeeper.
package planner

import (
	"log/slog"
	"sync/atomic"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/memory"
	"github.com/talgya/gridlife/internal/policy"
)

// Config controls how the Steward equips creatures.
type Config struct {
	BatchSize      int                   // Complete records needed before a retrain
	Substance      grid.Substance        // What creatures forage and judge partners by
	MaxPopulation  int                   // Creature cap enforced by veto; 0 means unlimited
	MemoryScope    agents.Scope          // Where creatures learn from
	ModelScope     agents.Scope          // Which model creatures consult and train
	MemoryCapacity int                   // Size of the shared store
	Logistic       policy.LogisticConfig // Settings for every model the Steward builds
	CreatureTuning *agents.Tuning        // Applied to every creature when set
}

// DefaultConfig returns the stock configuration: everything shared, retrain
// every 20 complete records.
func DefaultConfig() Config {
	return Config{
		BatchSize:      20,
		Substance:      grid.SubstanceNectar,
		MemoryScope:    agents.ScopePublic,
		ModelScope:     agents.ScopePublic,
		MemoryCapacity: memory.DefaultCapacity,
		Logistic:       policy.DefaultLogisticConfig(),
	}
}

// Steward is the creation gatekeeper. It owns the public experience store
// and decision model and hands them to each creature it lets in.
type Steward struct {
	cfg    Config
	grid   *grid.Grid
	memory *memory.Store
	model  policy.Classifier

	equipped atomic.Int64
	vetoed   atomic.Int64
}

// New creates a Steward. A nil model gets a fresh logistic classifier.
func New(cfg Config, model policy.Classifier) *Steward {
	if model == nil {
		model = policy.NewLogistic(cfg.Logistic)
	}
	return &Steward{
		cfg:    cfg,
		memory: memory.New(cfg.MemoryCapacity),
		model:  model,
	}
}

// Attach registers s as the gatekeeper of g.
func (s *Steward) Attach(g *grid.Grid) {
	s.grid = g
	g.SetGatekeeper(s)
}

func (s *Steward) Config() Config           { return s.cfg }
func (s *Steward) Memory() *memory.Store    { return s.memory }
func (s *Steward) Model() policy.Classifier { return s.model }
func (s *Steward) Equipped() int64          { return s.equipped.Load() }
func (s *Steward) Vetoed() int64            { return s.vetoed.Load() }

// HandleCreation equips every new creature and vetoes creatures beyond the
// population cap. Other entities pass untouched.
func (s *Steward) HandleCreation(e grid.Entity) bool {
	c, ok := e.(*agents.Creature)
	if !ok {
		return false
	}
	if s.cfg.MaxPopulation > 0 && s.grid != nil && s.grid.CountKind(grid.KindCreature) >= s.cfg.MaxPopulation {
		s.vetoed.Add(1)
		slog.Debug("creature vetoed", "population", s.cfg.MaxPopulation)
		return true
	}
	s.Equip(c)
	return false
}

// Equip binds c to the Steward's learning resources and planning callback.
// Males record the outcome of every GoMating they queue.
func (s *Steward) Equip(c *agents.Creature) {
	if s.cfg.CreatureTuning != nil {
		c.SetTuning(*s.cfg.CreatureTuning)
	}

	b := agents.Bindings{
		PublicMemory: s.memory,
		PublicModel:  s.model,
		MemoryScope:  s.cfg.MemoryScope,
		ModelScope:   s.cfg.ModelScope,
		BatchSize:    s.cfg.BatchSize,
	}
	if s.cfg.ModelScope == agents.ScopePrivate {
		b.PrivateModel = policy.NewLogistic(s.cfg.Logistic)
	}
	c.Bind(b)

	if c.Sex() == agents.SexMale {
		c.SetRecordingTask(agents.RecordingTask{
			Features: MaleFeatures(s.cfg.Substance),
			Outcome:  agents.Accomplished,
		}, agents.KindGoMating)
	}
	c.SetPlan(s.Plan)
	s.equipped.Add(1)
}

// Plan queues the next behavior. Males ask their model whether to go mating
// and fall back to a coin flip while it is untrained; females always forage.
func (s *Steward) Plan(c *agents.Creature) {
	if c.Sex() == agents.SexMale && c.Placed() {
		x, _ := c.Features(agents.KindGoMating)
		if mate, _ := policy.Decide(c.Model(), x, c.Grid().Rand()); mate {
			c.QueueAction(agents.NewGoMating(c))
			return
		}
	}

	f := agents.NewForage(c)
	_ = f.SetObjective(agents.Objective{agents.ParamSubstance: s.cfg.Substance}, true)
	c.QueueAction(f)
}
