package agents

import "github.com/talgya/gridlife/internal/grid"

// Forage searches for the nearest deposit of a substance, walks to it and
// extracts one unit. A deposit already within reach is harvested without
// moving.
type Forage struct {
	chain
	substance    grid.Substance
	hasSubstance bool
	search       *SearchSubstance
	move         *MoveTo
	extract      *Extract
}

// NewForage creates a forage behavior with no substance bound.
func NewForage(subject *Creature) *Forage {
	f := &Forage{
		chain:   chain{action: newAction(KindForage, subject, false)},
		search:  NewSearchSubstance(subject),
		move:    NewMoveTo(subject),
		extract: NewExtract(subject),
	}
	f.enter = f.enterSearch
	f.advance = f.transition
	return f
}

func (f *Forage) Schema() []ParamKey { return []ParamKey{ParamSubstance} }

func (f *Forage) SetObjective(obj Objective, strict bool) error {
	return applyObjective(f.Schema(), obj, strict, func(k ParamKey, v any) bool {
		s, ok := v.(grid.Substance)
		if ok && s.Valid() {
			f.substance, f.hasSubstance = s, true
			return true
		}
		return false
	})
}

func (f *Forage) Execute() { f.drive() }

func (f *Forage) enterSearch() Action {
	if !f.hasSubstance {
		return nil
	}
	_ = f.search.SetObjective(Objective{ParamSubstance: f.substance}, false)
	return f.search
}

func (f *Forage) extractAt(at grid.Coord) Action {
	_ = f.extract.SetObjective(Objective{ParamSubstance: f.substance, ParamSubstanceAt: at}, false)
	return f.extract
}

func (f *Forage) transition(finished Action, r Result) Action {
	switch finished.Kind() {
	case KindSearchSubstance:
		if r.Found == nil {
			return nil
		}
		if grid.Manhattan(f.subject.Position(), *r.Found) <= 1 {
			return f.extractAt(*r.Found)
		}
		_ = f.move.SetObjective(Objective{ParamTarget: *r.Found}, false)
		return f.move
	case KindMoveTo:
		return f.extractAt(f.subject.Position())
	case KindExtract:
		return nil
	default:
		return nil
	}
}
