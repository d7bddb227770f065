package agents

import "github.com/talgya/gridlife/internal/grid"

// Extract takes one unit of a substance from a cell within reach of the
// subject. It is instant.
type Extract struct {
	action
	substance    grid.Substance
	hasSubstance bool
	at           grid.Coord
	hasAt        bool
}

// NewExtract creates an extraction with no objective.
func NewExtract(subject *Creature) *Extract {
	return &Extract{action: newAction(KindExtract, subject, true)}
}

func (x *Extract) Schema() []ParamKey { return []ParamKey{ParamSubstance, ParamSubstanceAt} }

func (x *Extract) SetObjective(obj Objective, strict bool) error {
	return applyObjective(x.Schema(), obj, strict, func(k ParamKey, v any) bool {
		switch k {
		case ParamSubstance:
			s, ok := v.(grid.Substance)
			if ok && s.Valid() {
				x.substance, x.hasSubstance = s, true
				return true
			}
		case ParamSubstanceAt:
			c, ok := v.(grid.Coord)
			if ok {
				x.at, x.hasAt = c, true
				return true
			}
		}
		return false
	})
}

// source returns the occupant to take from: the topmost scenery occupant of
// the target cell that holds the substance.
func (x *Extract) source() grid.Entity {
	cell := x.subject.Grid().Cell(x.at.X, x.at.Y)
	for i := len(cell) - 1; i >= 0; i-- {
		b := cell[i].Core()
		if b.Scenery() && b.Contains(x.substance) {
			return cell[i]
		}
	}
	return nil
}

func (x *Extract) Feasible() bool {
	if !x.hasSubstance || !x.hasAt || !x.subject.Placed() {
		return false
	}
	if grid.Manhattan(x.subject.Position(), x.at) > 1 {
		return false
	}
	return x.source() != nil
}

func (x *Extract) Execute() {
	if x.done || !x.Feasible() {
		return
	}
	src := x.source()
	if src.Core().Inventory().Extract(x.substance) {
		x.subject.Inventory().Pocket(x.substance, 1)
		x.finish(true)
		return
	}
	x.finish(false)
}
