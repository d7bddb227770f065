// Package agents provides the creatures that roam the grid, the transient
// states attached to them and the action framework that drives their
// behavior tick by tick.
package agents

import (
	"errors"

	"github.com/talgya/gridlife/internal/grid"
)

var (
	// ErrInvalidObjective is returned by SetObjective in strict mode for an
	// unknown key or a value of the wrong type.
	ErrInvalidObjective = errors.New("agents: invalid objective")
	// ErrBindingMissing is returned when a creature records experience but
	// has no memory store or decision model bound for its configured scopes.
	ErrBindingMissing = errors.New("agents: memory or model binding missing")
)

// Sex is a creature's biological sex.
type Sex uint8

const (
	SexMale   Sex = 0
	SexFemale Sex = 1
)

// String returns "male" or "female".
func (s Sex) String() string {
	if s == SexFemale {
		return "female"
	}
	return "male"
}

// Opposite returns the other sex.
func (s Sex) Opposite() Sex {
	if s == SexFemale {
		return SexMale
	}
	return SexFemale
}

// Scope selects whether a creature learns from its own store and model or
// from the ones shared by its whole population.
type Scope uint8

const (
	ScopeNone    Scope = iota // Not configured
	ScopePrivate              // Owned by the creature
	ScopePublic               // Shared across creatures
)

// String returns the scope name used in configuration files.
func (s Scope) String() string {
	switch s {
	case ScopePrivate:
		return "private"
	case ScopePublic:
		return "public"
	default:
		return "none"
	}
}

// ParseScope converts a configuration value into a Scope.
func ParseScope(s string) (Scope, bool) {
	switch s {
	case "private":
		return ScopePrivate, true
	case "public":
		return ScopePublic, true
	case "", "none":
		return ScopeNone, true
	default:
		return ScopeNone, false
	}
}

// PlanFunc is invoked when a creature's action queue is empty. It should
// queue at least one action; leaving the queue empty idles the creature for
// the tick.
type PlanFunc func(c *Creature)

// Tuning holds the lifecycle and mating constants of a creature.
type Tuning struct {
	Mortality       float64        // Per-tick chance of dying once past MinDeathAge
	MinDeathAge     uint64         // Creatures this young never die at random
	DeathGrace      uint64         // Ticks a corpse stays on the grid
	PregnancyTicks  int            // Ticks from mating to giving birth
	CooldownTicks   int            // Ticks a male refuses to mate after mating
	AcceptanceBias  float64        // Weight of the female's own stock in the acceptance odds
	MatingSubstance grid.Substance // Currency judged by females
	MaxChain        int            // Instant actions performed back to back in one tick
	LogSize         int            // Finished actions kept in the action log
}

// DefaultTuning returns the stock creature constants.
func DefaultTuning() Tuning {
	return Tuning{
		Mortality:       0.001,
		MinDeathAge:     10,
		DeathGrace:      10,
		PregnancyTicks:  15,
		CooldownTicks:   10,
		AcceptanceBias:  3,
		MatingSubstance: grid.SubstanceNectar,
		MaxChain:        64,
		LogSize:         50,
	}
}

// BreedingTuning controls how often breeding grounds emit creatures.
type BreedingTuning struct {
	Chance   float64 // Per-tick chance of emitting a creature when the ground is free
	Creature Tuning  // Tuning handed to emitted creatures
}

// DefaultBreedingTuning returns the stock breeding ground constants.
func DefaultBreedingTuning() BreedingTuning {
	return BreedingTuning{
		Chance:   0.2,
		Creature: DefaultTuning(),
	}
}
