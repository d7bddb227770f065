package agents

import (
	"fmt"
	"slices"
	"sort"
	"sync/atomic"

	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/memory"
)

// ActionKind enumerates every behavior a creature can queue.
type ActionKind uint8

const (
	KindMoveTo          ActionKind = iota // Walk to a coordinate
	KindMoveToEntity                      // Walk to another entity
	KindSearchSubstance                   // Find the nearest substance deposit
	KindSearchPartner                     // Find the nearest mating partner
	KindExtract                           // Take one unit of substance
	KindMate                              // Mate with an adjacent partner
	KindGiveBirth                         // Place a newborn next to the mother
	KindForage                            // Search, move, extract
	KindGoMating                          // Search, move, mate
)

// String returns the snake_case kind name used as the experience label.
func (k ActionKind) String() string {
	switch k {
	case KindMoveTo:
		return "move_to"
	case KindMoveToEntity:
		return "move_to_entity"
	case KindSearchSubstance:
		return "search_substance"
	case KindSearchPartner:
		return "search_partner"
	case KindExtract:
		return "extract"
	case KindMate:
		return "mate"
	case KindGiveBirth:
		return "give_birth"
	case KindForage:
		return "forage"
	case KindGoMating:
		return "go_mating"
	default:
		return "unknown"
	}
}

// ParamKey names an objective parameter.
type ParamKey string

const (
	ParamTarget       ParamKey = "target"        // grid.Coord to reach
	ParamTargetEntity ParamKey = "target_entity" // grid.Entity to reach or mate with
	ParamSubstance    ParamKey = "substance"     // grid.Substance to search or extract
	ParamSubstanceAt  ParamKey = "substance_at"  // grid.Coord holding the substance
)

// Objective is a set of named parameters validated against an action's schema.
type Objective map[ParamKey]any

// Result is what an action reports after execution.
type Result struct {
	Done         bool
	Accomplished bool
	Found        *grid.Coord // SearchSubstance: where the substance lies
	Partner      *Creature   // SearchPartner: who was found
}

// Action is the unit of creature behavior.
//
// Feasible checks the objective and world preconditions; it may refresh
// cached plans (paths, retargeting) but never changes the world. Execute is
// the only mutating step and is a no-op once Done is reported.
type Action interface {
	ID() memory.Key
	Kind() ActionKind
	Subject() *Creature
	Schema() []ParamKey
	SetObjective(obj Objective, strict bool) error
	Feasible() bool
	Execute()
	Result() Result
	// Instant actions let the next queued action run in the same tick.
	Instant() bool
}

// RunToResult executes a once and returns its result.
func RunToResult(a Action) Result {
	a.Execute()
	return a.Result()
}

var actionSeq atomic.Uint64

// action holds the bookkeeping shared by every Action implementation.
type action struct {
	id           memory.Key
	kind         ActionKind
	subject      *Creature
	instant      bool
	done         bool
	accomplished bool
}

func newAction(kind ActionKind, subject *Creature, instant bool) action {
	return action{
		id:      memory.Key(actionSeq.Add(1)),
		kind:    kind,
		subject: subject,
		instant: instant,
	}
}

func (a *action) ID() memory.Key     { return a.id }
func (a *action) Kind() ActionKind   { return a.kind }
func (a *action) Subject() *Creature { return a.subject }
func (a *action) Instant() bool      { return a.instant }
func (a *action) Done() bool         { return a.done }

func (a *action) Result() Result {
	return Result{Done: a.done, Accomplished: a.accomplished}
}

func (a *action) finish(accomplished bool) {
	a.done = true
	a.accomplished = accomplished
}

// applyObjective walks obj in key order and hands each schema key to set.
// Unknown keys and values set rejects are ignored unless strict.
func applyObjective(schema []ParamKey, obj Objective, strict bool, set func(ParamKey, any) bool) error {
	keys := make([]ParamKey, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		if !slices.Contains(schema, k) {
			if strict {
				return fmt.Errorf("%w: %q is not a valid objective", ErrInvalidObjective, k)
			}
			continue
		}
		if !set(k, obj[k]) && strict {
			return fmt.Errorf("%w: %q cannot be %T", ErrInvalidObjective, k, obj[k])
		}
	}
	return nil
}

// subjectGrid returns the grid the subject stands on, or nil.
func (a *action) subjectGrid() *grid.Grid {
	if a.subject == nil {
		return nil
	}
	return a.subject.Grid()
}
