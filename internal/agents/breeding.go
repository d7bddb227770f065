package agents

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/gridlife/internal/entropy"
	"github.com/talgya/gridlife/internal/grid"
)

// BreedingGround is passable ground that now and then emits a creature onto
// itself while nothing stands on it.
type BreedingGround struct {
	grid.Base
	tuning BreedingTuning
}

// NewBreedingGround creates a breeding ground with default tuning.
func NewBreedingGround() *BreedingGround {
	return &BreedingGround{
		Base:   grid.NewBase(grid.KindBreedingGround, true, true),
		tuning: DefaultBreedingTuning(),
	}
}

func (b *BreedingGround) Tuning() BreedingTuning     { return b.tuning }
func (b *BreedingGround) SetTuning(t BreedingTuning) { b.tuning = t }
func (b *BreedingGround) Symbol() byte               { return '*' }

// Live emits a creature with the configured chance. The newcomer starts
// acting on the next tick.
func (b *BreedingGround) Live(tick uint64) error {
	b.Advance()

	g := b.Grid()
	if g == nil || !g.CellPassable(b.X(), b.Y()) {
		return nil
	}
	if !entropy.Chance(g.Rand(), b.tuning.Chance) {
		return nil
	}

	c := RandomCreature(g.Rand(), b.tuning.Creature)
	if err := g.InsertShifted(b.X(), b.Y(), c, 1); err != nil {
		if errors.Is(err, grid.ErrVetoed) {
			return nil
		}
		return fmt.Errorf("breeding ground %d: %w", b.ID(), err)
	}
	slog.Debug("creature emerged", "tick", tick, "creature", c.ID(), "x", b.X(), "y", b.Y())
	g.Emit(grid.EventSpawn, fmt.Sprintf("%s emerged at (%d,%d)", c.Label(), b.X(), b.Y()))
	return nil
}
