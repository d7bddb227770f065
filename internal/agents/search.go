package agents

import "github.com/talgya/gridlife/internal/grid"

// SearchSubstance finds the nearest cell holding a substance by breadth-first
// search over passable cells. It is instant.
type SearchSubstance struct {
	action
	substance    grid.Substance
	hasSubstance bool
	found        *grid.Coord
}

// NewSearchSubstance creates a search with no substance bound.
func NewSearchSubstance(subject *Creature) *SearchSubstance {
	return &SearchSubstance{action: newAction(KindSearchSubstance, subject, true)}
}

func (s *SearchSubstance) Schema() []ParamKey { return []ParamKey{ParamSubstance} }

func (s *SearchSubstance) SetObjective(obj Objective, strict bool) error {
	return applyObjective(s.Schema(), obj, strict, func(k ParamKey, v any) bool {
		sub, ok := v.(grid.Substance)
		if ok && sub.Valid() {
			s.substance, s.hasSubstance = sub, true
			return true
		}
		return false
	})
}

func (s *SearchSubstance) Feasible() bool {
	return s.hasSubstance && s.subject.Placed()
}

func (s *SearchSubstance) Execute() {
	if s.done || !s.Feasible() {
		return
	}
	g := s.subject.Grid()
	s.found = bfs(g, s.subject.Position(), true, func(cell []grid.Entity) bool {
		for _, e := range cell {
			if e.Core().Contains(s.substance) {
				return true
			}
		}
		return false
	})
	s.finish(s.found != nil)
}

func (s *SearchSubstance) Result() Result {
	r := s.action.Result()
	r.Found = s.found
	return r
}

// SearchPartner finds the nearest creature the subject can mate with. Any
// in-bounds cell is inspected, but the search only spreads through passable
// cells, so a partner standing in a blocking cell is still found. It is
// instant.
type SearchPartner struct {
	action
	partner *Creature
}

// NewSearchPartner creates a partner search.
func NewSearchPartner(subject *Creature) *SearchPartner {
	return &SearchPartner{action: newAction(KindSearchPartner, subject, true)}
}

func (s *SearchPartner) Schema() []ParamKey { return nil }

func (s *SearchPartner) SetObjective(obj Objective, strict bool) error {
	return applyObjective(s.Schema(), obj, strict, nil)
}

func (s *SearchPartner) Feasible() bool { return s.subject.Placed() }

func (s *SearchPartner) Execute() {
	if s.done || !s.Feasible() {
		return
	}
	g := s.subject.Grid()
	bfs(g, s.subject.Position(), false, func(cell []grid.Entity) bool {
		for _, e := range cell {
			if other, ok := e.(*Creature); ok && s.subject.CanMate(other) {
				s.partner = other
				return true
			}
		}
		return false
	})
	s.finish(s.partner != nil)
}

func (s *SearchPartner) Result() Result {
	r := s.action.Result()
	r.Partner = s.partner
	return r
}

// bfs expands level by level from origin and returns the first discovered
// cell whose occupants satisfy match. The origin itself is never tested.
// With passableOnly, blocked cells are neither tested nor expanded;
// otherwise they are tested but not expanded.
func bfs(g *grid.Grid, origin grid.Coord, passableOnly bool, match func([]grid.Entity) bool) *grid.Coord {
	checked := map[grid.Coord]bool{origin: true}
	frontier := []grid.Coord{origin}

	for len(frontier) > 0 {
		var next []grid.Coord
		for _, c := range frontier {
			for _, n := range c.Neighbors() {
				if checked[n] || !g.CoordinatesValid(n.X, n.Y) {
					continue
				}
				passable := g.CellPassable(n.X, n.Y)
				if passableOnly && !passable {
					continue
				}
				checked[n] = true
				if match(g.Cell(n.X, n.Y)) {
					found := n
					return &found
				}
				if passable {
					next = append(next, n)
				}
			}
		}
		frontier = next
	}
	return nil
}
