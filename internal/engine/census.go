package engine

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
)

// Census is a head count of the grid at one tick.
type Census struct {
	Tick            uint64 `json:"tick"`
	Entities        int    `json:"entities"`
	Creatures       int    `json:"creatures"`
	Alive           int    `json:"alive"`
	Males           int    `json:"males"`
	Females         int    `json:"females"`
	Pregnant        int    `json:"pregnant"`
	Cooldown        int    `json:"cooldown"`
	Walls           int    `json:"walls"`
	BreedingGrounds int    `json:"breeding_grounds"`
	GroundNectar    int    `json:"ground_nectar"`
	CarriedNectar   int    `json:"carried_nectar"`
	OldestAge       uint64 `json:"oldest_age"`
}

// TakeCensus counts g. It must not run concurrently with a tick.
func TakeCensus(g *grid.Grid) Census {
	c := Census{
		Tick:            g.Epoch(),
		Entities:        g.Population(),
		Walls:           g.CountKind(grid.KindBlock),
		BreedingGrounds: g.CountKind(grid.KindBreedingGround),
	}
	for _, xy := range g.FindAllCoordinatesBySubstance(grid.SubstanceNectar) {
		for _, e := range g.Cell(xy.X, xy.Y) {
			if e.Core().Scenery() {
				c.GroundNectar += e.Core().CountSubstance(grid.SubstanceNectar)
			}
		}
	}
	for _, e := range g.FindAllEntitiesByKind(grid.KindCreature) {
		cr, ok := e.(*agents.Creature)
		if !ok {
			continue
		}
		c.Creatures++
		if !cr.Alive() {
			continue
		}
		c.Alive++
		if cr.Sex() == agents.SexMale {
			c.Males++
		} else {
			c.Females++
		}
		if cr.HasState(agents.StatePregnant) {
			c.Pregnant++
		}
		if cr.HasState(agents.StateCooldown) {
			c.Cooldown++
		}
		c.CarriedNectar += cr.CountSubstance(grid.SubstanceNectar)
		c.OldestAge = max(c.OldestAge, cr.Age())
	}
	return c
}

// Log writes the census as one info line.
func (c Census) Log() {
	slog.Info("census",
		"tick", humanize.Comma(int64(c.Tick)),
		"alive", c.Alive,
		"males", c.Males,
		"females", c.Females,
		"pregnant", c.Pregnant,
		"corpses", c.Creatures-c.Alive,
		"ground_nectar", humanize.Comma(int64(c.GroundNectar)),
		"carried_nectar", humanize.Comma(int64(c.CarriedNectar)),
		"oldest", c.OldestAge,
	)
}
