package grid

// Event is a notable occurrence recorded during a tick.
type Event struct {
	Tick        uint64 `json:"tick"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Event categories.
const (
	EventBirth   = "birth"
	EventDeath   = "death"
	EventMating  = "mating"
	EventSpawn   = "spawn"
	EventRetrain = "retrain"
)

// maxPendingEvents caps the undrained journal so an unattended grid cannot
// grow without bound.
const maxPendingEvents = 10000

// Emit records an event stamped with the current epoch.
func (g *Grid) Emit(category, description string) {
	if len(g.events) >= maxPendingEvents {
		g.events = g.events[1:]
	}
	g.events = append(g.events, Event{
		Tick:        g.epoch,
		Category:    category,
		Description: description,
	})
}

// DrainEvents returns the events recorded since the previous drain and
// clears the journal.
func (g *Grid) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}
