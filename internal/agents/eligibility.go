package agents

// CanMate reports whether c and other form an eligible pair: opposite sexes,
// both alive and the female not already pregnant. The relation is symmetric.
func (c *Creature) CanMate(other *Creature) bool {
	if other == nil || other == c || c.sex == other.sex {
		return false
	}
	if !c.alive || !other.alive {
		return false
	}
	female := c
	if other.sex == SexFemale {
		female = other
	}
	return !female.HasState(StatePregnant)
}

// WillMate reports whether c consents to mate with other right now.
//
// Males refuse while under cooldown. Females refuse when neither party
// carries the mating substance, accept when their own stock does not exceed
// the partner's, and otherwise accept with probability
// partner / (bias*own + partner), so richer females grow choosier.
func (c *Creature) WillMate(other *Creature) bool {
	if !c.CanMate(other) {
		return false
	}
	if c.sex == SexMale {
		return !c.HasState(StateCooldown)
	}

	s := c.tuning.MatingSubstance
	own := c.CountSubstance(s)
	theirs := other.CountSubstance(s)
	if own+theirs == 0 {
		return false
	}
	if own <= theirs {
		return true
	}
	odds := float64(theirs) / (c.tuning.AcceptanceBias*float64(own) + float64(theirs))
	return c.rand().Float64() < odds
}
