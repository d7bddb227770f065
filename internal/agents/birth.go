package agents

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/gridlife/internal/grid"
)

// GiveBirth places a newborn on a random free cell next to the mother and
// ends her pregnancy.
type GiveBirth struct {
	action
	pregnancy *State
	child     *Creature
}

// NewGiveBirth creates a birth for the given pregnancy state.
func NewGiveBirth(subject *Creature, pregnancy *State) *GiveBirth {
	return &GiveBirth{
		action:    newAction(KindGiveBirth, subject, false),
		pregnancy: pregnancy,
	}
}

func (b *GiveBirth) Schema() []ParamKey { return nil }

func (b *GiveBirth) SetObjective(obj Objective, strict bool) error {
	return applyObjective(b.Schema(), obj, strict, nil)
}

// Child returns the newborn, or nil before a successful birth.
func (b *GiveBirth) Child() *Creature { return b.child }

func (b *GiveBirth) freeCells() []grid.Coord {
	g := b.subject.Grid()
	if g == nil {
		return nil
	}
	var free []grid.Coord
	for _, n := range b.subject.Position().Neighbors() {
		if g.CellPassable(n.X, n.Y) {
			free = append(free, n)
		}
	}
	return free
}

func (b *GiveBirth) Feasible() bool {
	return len(b.freeCells()) > 0
}

func (b *GiveBirth) Execute() {
	if b.done || !b.Feasible() {
		return
	}
	g := b.subject.Grid()
	free := b.freeCells()
	spot := free[g.Rand().Intn(len(free))]

	child := NewCreature(randomSex(g))
	child.SetTuning(b.subject.tuning)
	child.Name = generateName(g.Rand(), child.Sex())

	err := g.InsertShifted(spot.X, spot.Y, child, 1)
	b.subject.RemoveState(b.pregnancy)
	if err != nil {
		if !errors.Is(err, grid.ErrVetoed) {
			slog.Warn("birth failed", "mother", b.subject.ID(), "error", err)
		}
		b.finish(false)
		return
	}

	b.child = child
	b.finish(true)
	slog.Debug("creature born", "tick", g.Epoch(), "mother", b.subject.ID(), "child", child.ID())
	g.Emit(grid.EventBirth, fmt.Sprintf("%s gave birth to %s", b.subject.Label(), child.Label()))
}
