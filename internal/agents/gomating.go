package agents

import "github.com/talgya/gridlife/internal/grid"

// GoMating searches for the nearest partner, walks up to it and mates. A
// creature under cooldown gives up at once.
type GoMating struct {
	chain
	search *SearchPartner
	move   *MoveToEntity
	mate   *Mate
}

// NewGoMating creates a mating behavior.
func NewGoMating(subject *Creature) *GoMating {
	g := &GoMating{
		chain:  chain{action: newAction(KindGoMating, subject, false)},
		search: NewSearchPartner(subject),
		move:   NewMoveToEntity(subject),
		mate:   NewMate(subject),
	}
	g.enter = func() Action { return g.search }
	g.advance = g.transition
	return g
}

func (g *GoMating) Schema() []ParamKey { return nil }

func (g *GoMating) SetObjective(obj Objective, strict bool) error {
	return applyObjective(g.Schema(), obj, strict, nil)
}

// Partner returns the partner found by the search, or nil.
func (g *GoMating) Partner() *Creature { return g.search.partner }

func (g *GoMating) Execute() {
	if g.done {
		return
	}
	if g.subject.HasState(StateCooldown) {
		g.terminate(false)
		return
	}
	g.drive()
}

func (g *GoMating) mateWith(partner *Creature) Action {
	_ = g.mate.SetObjective(Objective{ParamTargetEntity: partner}, false)
	return g.mate
}

func (g *GoMating) transition(finished Action, r Result) Action {
	switch finished.Kind() {
	case KindSearchPartner:
		if r.Partner == nil {
			return nil
		}
		if grid.Manhattan(g.subject.Position(), r.Partner.Position()) <= 1 {
			return g.mateWith(r.Partner)
		}
		_ = g.move.SetObjective(Objective{ParamTargetEntity: grid.Entity(r.Partner)}, false)
		return g.move
	case KindMoveToEntity:
		return g.mateWith(g.search.partner)
	case KindMate:
		return nil
	default:
		return nil
	}
}
