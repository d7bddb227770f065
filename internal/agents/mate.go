package agents

import (
	"fmt"
	"log/slog"

	"github.com/talgya/gridlife/internal/grid"
)

// Mate pairs the subject with an adjacent partner. The female party becomes
// pregnant and the male party gets a cooldown. It is instant.
type Mate struct {
	action
	partner *Creature

	// Consent is random for females; it is drawn once per tick so repeated
	// feasibility checks agree with the execution.
	consentTick uint64
	consentSet  bool
	consent     bool
}

// NewMate creates a mating action with no partner.
func NewMate(subject *Creature) *Mate {
	return &Mate{action: newAction(KindMate, subject, true)}
}

func (m *Mate) Schema() []ParamKey { return []ParamKey{ParamTargetEntity} }

func (m *Mate) SetObjective(obj Objective, strict bool) error {
	return applyObjective(m.Schema(), obj, strict, func(k ParamKey, v any) bool {
		c, ok := v.(*Creature)
		if ok && c != nil {
			m.partner = c
			m.consentSet = false
			return true
		}
		return false
	})
}

// Partner returns the mating partner.
func (m *Mate) Partner() *Creature { return m.partner }

func (m *Mate) consents() bool {
	g := m.subject.Grid()
	if g == nil {
		return false
	}
	if !m.consentSet || m.consentTick != g.Epoch() {
		m.consent = m.subject.WillMate(m.partner) && m.partner.WillMate(m.subject)
		m.consentTick = g.Epoch()
		m.consentSet = true
	}
	return m.consent
}

func (m *Mate) Feasible() bool {
	if m.partner == nil || !m.subject.Placed() || m.partner.Grid() != m.subject.Grid() {
		return false
	}
	if grid.Manhattan(m.subject.Position(), m.partner.Position()) > 1 {
		return false
	}
	return m.consents()
}

func (m *Mate) Execute() {
	if m.done || !m.Feasible() {
		return
	}

	mother, father := m.partner, m.subject
	if m.subject.Sex() == SexFemale {
		mother, father = m.subject, m.partner
	}
	mother.AddState(NewPregnant(mother, mother.tuning.PregnancyTicks))
	father.AddState(NewCooldown(father, father.tuning.CooldownTicks))
	m.finish(true)

	g := m.subject.Grid()
	slog.Debug("creatures mated", "tick", g.Epoch(), "female", mother.ID(), "male", father.ID())
	g.Emit(grid.EventMating, fmt.Sprintf("%s and %s mated", mother.Label(), father.Label()))
}
