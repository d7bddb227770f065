package agents

// StateKind enumerates the transient conditions a creature can carry.
type StateKind uint8

const (
	StatePregnant StateKind = iota // Maturation timer ending in a birth
	StateCooldown                  // Male refuses to mate until it expires
)

// String returns a human-readable state name.
func (k StateKind) String() string {
	switch k {
	case StatePregnant:
		return "pregnant"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// State is a timer attached to a creature. Affect runs once per tick; when
// the duration reaches the timing the state fires its effect.
type State struct {
	kind     StateKind
	subject  *Creature
	duration int
	timing   int
}

// NewPregnant creates a maturation timer. When it fires, a GiveBirth action
// jumps to the front of the subject's queue; the birth removes the state.
func NewPregnant(subject *Creature, timing int) *State {
	return &State{kind: StatePregnant, subject: subject, timing: timing}
}

// NewCooldown creates a mating cooldown that removes itself when it fires.
func NewCooldown(subject *Creature, timing int) *State {
	return &State{kind: StateCooldown, subject: subject, timing: timing}
}

func (s *State) Kind() StateKind    { return s.kind }
func (s *State) Subject() *Creature { return s.subject }
func (s *State) Duration() int      { return s.duration }
func (s *State) Timing() int        { return s.timing }

// Affect advances the timer by one tick and fires the effect exactly once,
// on the tick the duration reaches the timing.
func (s *State) Affect() {
	s.duration++
	if s.duration != s.timing {
		return
	}

	switch s.kind {
	case StatePregnant:
		s.subject.QueueFront(NewGiveBirth(s.subject, s))
	case StateCooldown:
		s.subject.RemoveState(s)
	}
}

// StateRecord is the persisted form of a State.
type StateRecord struct {
	Kind     StateKind `json:"kind"`
	Duration int       `json:"duration"`
	Timing   int       `json:"timing"`
}

// Record captures the state for a snapshot.
func (s *State) Record() StateRecord {
	return StateRecord{Kind: s.kind, Duration: s.duration, Timing: s.timing}
}
