package planner

import (
	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
)

// CooldownFeature is 1 while the creature refuses to mate.
type CooldownFeature struct{}

func (CooldownFeature) Feature(c *agents.Creature) float64 {
	return flag(c.HasState(agents.StateCooldown))
}

// SubstanceGapFeature is how much more of the substance the nearest eligible
// partner carries than the creature itself, or 0 with no partner around.
type SubstanceGapFeature struct {
	Substance grid.Substance
}

func (f SubstanceGapFeature) Feature(c *agents.Creature) float64 {
	partner := nearestPartner(c)
	if partner == nil {
		return 0
	}
	return float64(partner.CountSubstance(f.Substance) - c.CountSubstance(f.Substance))
}

// PartnerExistsFeature is 1 when an eligible partner can be reached.
type PartnerExistsFeature struct{}

func (PartnerExistsFeature) Feature(c *agents.Creature) float64 {
	return flag(nearestPartner(c) != nil)
}

// MaleFeatures returns the feature set used to decide whether to go mating.
func MaleFeatures(s grid.Substance) []agents.FeatureExtractor {
	return []agents.FeatureExtractor{
		CooldownFeature{},
		SubstanceGapFeature{Substance: s},
		PartnerExistsFeature{},
	}
}

func nearestPartner(c *agents.Creature) *agents.Creature {
	if !c.Placed() {
		return nil
	}
	return agents.RunToResult(agents.NewSearchPartner(c)).Partner
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
