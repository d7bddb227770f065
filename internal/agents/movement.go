package agents

import (
	"math"

	"github.com/talgya/gridlife/internal/grid"
)

// walker follows a cached path one step at a time, planning it lazily and
// replanning when the next step becomes blocked.
type walker struct {
	target    grid.Coord
	hasTarget bool
	path      []grid.Coord
}

func (w *walker) aim(target grid.Coord) {
	if w.hasTarget && w.target == target {
		return
	}
	w.target = target
	w.hasTarget = true
	w.path = nil
}

func (w *walker) plan(c *Creature) {
	w.path = nil
	if g := c.Grid(); g != nil && w.hasTarget {
		if path, ok := g.FindPath(c.Position(), w.target); ok {
			w.path = path
		}
	}
}

// ready makes sure a path exists, planning one if needed.
func (w *walker) ready(c *Creature) bool {
	if !w.hasTarget || !c.Placed() {
		return false
	}
	if len(w.path) == 0 {
		w.plan(c)
	}
	return len(w.path) > 0
}

// step moves the subject one cell along the path.
func (w *walker) step(c *Creature) {
	g := c.Grid()
	if g == nil {
		return
	}
	if len(w.path) == 0 || !g.CellPassable(w.path[0].X, w.path[0].Y) {
		w.plan(c)
	}
	if len(w.path) == 0 {
		return
	}
	next := w.path[0]
	w.path = w.path[1:]
	if g.CellPassable(next.X, next.Y) {
		_ = g.Move(c, next)
	}
}

// MoveTo walks the subject to a coordinate, one step per Execute.
type MoveTo struct {
	action
	walk walker
}

// NewMoveTo creates a movement action with no target.
func NewMoveTo(subject *Creature) *MoveTo {
	return &MoveTo{action: newAction(KindMoveTo, subject, false)}
}

func (m *MoveTo) Schema() []ParamKey { return []ParamKey{ParamTarget} }

func (m *MoveTo) SetObjective(obj Objective, strict bool) error {
	return applyObjective(m.Schema(), obj, strict, func(k ParamKey, v any) bool {
		c, ok := v.(grid.Coord)
		if ok {
			m.walk.aim(c)
		}
		return ok
	})
}

// Target returns the destination and whether one is set.
func (m *MoveTo) Target() (grid.Coord, bool) { return m.walk.target, m.walk.hasTarget }

func (m *MoveTo) arrived() bool {
	return m.walk.hasTarget && m.subject.Position() == m.walk.target
}

func (m *MoveTo) Feasible() bool {
	if !m.walk.hasTarget || !m.subject.Placed() {
		return false
	}
	if m.arrived() {
		return true
	}
	return m.walk.ready(m.subject)
}

func (m *MoveTo) Execute() {
	if m.done || !m.Feasible() {
		return
	}
	if !m.arrived() {
		m.walk.step(m.subject)
	}
	if m.arrived() {
		m.finish(true)
	}
}

// MoveToEntity walks the subject to another entity. A passable target is
// reached by standing on it; a blocking one by standing next to it, on the
// free neighbor closest to the subject. The goal is recomputed on every
// feasibility check because the target may move.
type MoveToEntity struct {
	action
	target grid.Entity
	walk   walker
}

// NewMoveToEntity creates a movement action with no target.
func NewMoveToEntity(subject *Creature) *MoveToEntity {
	return &MoveToEntity{action: newAction(KindMoveToEntity, subject, false)}
}

func (m *MoveToEntity) Schema() []ParamKey { return []ParamKey{ParamTargetEntity} }

func (m *MoveToEntity) SetObjective(obj Objective, strict bool) error {
	return applyObjective(m.Schema(), obj, strict, func(k ParamKey, v any) bool {
		e, ok := v.(grid.Entity)
		if ok && e != nil {
			m.target = e
			m.walk = walker{}
		}
		return ok && e != nil
	})
}

// Target returns the entity being approached.
func (m *MoveToEntity) Target() grid.Entity { return m.target }

// satisfied applies the arrival rule for the target's passability.
func (m *MoveToEntity) satisfied() bool {
	tb := m.target.Core()
	if tb.Passable() {
		return m.subject.Position() == tb.Position()
	}
	return grid.Manhattan(m.subject.Position(), tb.Position()) < 2
}

// retarget aims the walker at the target or its best free neighbor.
func (m *MoveToEntity) retarget() bool {
	tb := m.target.Core()
	if tb.Passable() {
		m.walk.aim(tb.Position())
		return true
	}

	g := m.subject.Grid()
	from := m.subject.Position()
	best, bestDist, found := grid.Coord{}, math.Inf(1), false
	for _, n := range tb.Position().Neighbors() {
		if !g.CellPassable(n.X, n.Y) {
			continue
		}
		if d := grid.Euclidean(from, n); d < bestDist {
			best, bestDist, found = n, d, true
		}
	}
	if found {
		m.walk.aim(best)
	}
	return found
}

func (m *MoveToEntity) Feasible() bool {
	if m.target == nil || !m.subject.Placed() {
		return false
	}
	if m.target.Core().Grid() != m.subject.Grid() {
		return false
	}
	if m.satisfied() {
		return true
	}
	if !m.retarget() {
		return false
	}
	return m.walk.ready(m.subject)
}

func (m *MoveToEntity) Execute() {
	if m.done || !m.Feasible() {
		return
	}
	if !m.satisfied() {
		m.walk.step(m.subject)
	}
	if m.satisfied() {
		m.finish(true)
	}
}
