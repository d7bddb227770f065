package agents

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/memory"
	"github.com/talgya/gridlife/internal/policy"
)

// FeatureExtractor computes one feature of a creature's situation.
type FeatureExtractor interface {
	Feature(c *Creature) float64
}

// FeatureFunc adapts a function to FeatureExtractor.
type FeatureFunc func(c *Creature) float64

func (f FeatureFunc) Feature(c *Creature) float64 { return f(c) }

// OutcomeExtractor scores a finished action.
type OutcomeExtractor interface {
	Outcome(c *Creature, a Action) float64
}

// OutcomeFunc adapts a function to OutcomeExtractor.
type OutcomeFunc func(c *Creature, a Action) float64

func (f OutcomeFunc) Outcome(c *Creature, a Action) float64 { return f(c, a) }

// Accomplished scores 1 for an accomplished action and 0 otherwise.
var Accomplished = OutcomeFunc(func(_ *Creature, a Action) float64 {
	if a.Result().Accomplished {
		return 1
	}
	return 0
})

// RecordingTask tells a creature what to remember about an action kind: the
// features captured when it is queued and the outcome scored when it ends.
type RecordingTask struct {
	Features []FeatureExtractor
	Outcome  OutcomeExtractor
}

// Bindings connect a creature to the memory and decision model it learns
// with. Scopes select between the creature's own store and model and the
// shared ones; the private store always exists.
type Bindings struct {
	PublicMemory *memory.Store
	PublicModel  policy.Classifier
	PrivateModel policy.Classifier
	MemoryScope  Scope
	ModelScope   Scope
	BatchSize    int
}

// Bind installs learning bindings.
func (c *Creature) Bind(b Bindings) { c.bindings = b }

// Bindings returns the installed learning bindings.
func (c *Creature) Bindings() Bindings { return c.bindings }

// PrivateMemory returns the creature's own experience store.
func (c *Creature) PrivateMemory() *memory.Store { return c.private }

// SetRecordingTask registers task for every given action kind.
func (c *Creature) SetRecordingTask(task RecordingTask, kinds ...ActionKind) {
	for _, k := range kinds {
		c.tasks[k] = task
	}
}

// Recording reports whether actions of kind are recorded.
func (c *Creature) Recording(kind ActionKind) bool {
	_, ok := c.tasks[kind]
	return ok
}

// Features evaluates the recording task's extractors for kind.
func (c *Creature) Features(kind ActionKind) ([]float64, bool) {
	task, ok := c.tasks[kind]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(task.Features))
	for i, f := range task.Features {
		out[i] = f.Feature(c)
	}
	return out, true
}

// Model returns the decision model selected by the model scope, or nil.
func (c *Creature) Model() policy.Classifier {
	switch c.bindings.ModelScope {
	case ScopePrivate:
		return c.bindings.PrivateModel
	case ScopePublic:
		return c.bindings.PublicModel
	default:
		return nil
	}
}

// Memory returns the experience store selected by the memory scope, or nil.
func (c *Creature) Memory() *memory.Store {
	switch c.bindings.MemoryScope {
	case ScopePrivate:
		return c.private
	case ScopePublic:
		return c.bindings.PublicMemory
	default:
		return nil
	}
}

// QueueAction appends a to the queue. When its kind is recorded, the current
// features are saved under the action's key in the private store and, when
// bound, the public one.
func (c *Creature) QueueAction(a Action) {
	if features, ok := c.Features(a.Kind()); ok {
		label := a.Kind().String()
		c.private.SaveState(a.ID(), label, features)
		if pub := c.bindings.PublicMemory; pub != nil {
			pub.SaveState(a.ID(), label, features)
		}
	}
	c.queue = append(c.queue, a)
}

// performAndRecord performs the head action and, for recorded kinds, saves
// the outcome once it is done. An action dropped without finishing leaves
// an incomplete record, which is discarded.
func (c *Creature) performAndRecord(a Action) {
	r, dequeued := c.perform(a)
	task, ok := c.tasks[a.Kind()]
	if !ok {
		return
	}
	switch {
	case r.Done:
		outcome := 0.0
		if task.Outcome != nil {
			outcome = task.Outcome.Outcome(c, a)
		}
		c.private.SaveResult(a.ID(), outcome)
		if pub := c.bindings.PublicMemory; pub != nil {
			pub.SaveResult(a.ID(), outcome)
		}
	case dequeued:
		c.forgetRecord(a)
	}
}

func (c *Creature) forgetRecord(a Action) {
	if !c.Recording(a.Kind()) {
		return
	}
	c.private.Discard(a.ID())
	if pub := c.bindings.PublicMemory; pub != nil {
		pub.Discard(a.ID())
	}
}

// RetrainIfReady fits the bound model once the bound store holds a full
// batch of complete records for a recorded kind, then the store is purged.
// Outcomes above one half are positive labels. A creature that records
// experience without a store and model for its scopes gets
// ErrBindingMissing; a failing fit is logged and retried next tick.
func (c *Creature) RetrainIfReady() error {
	if len(c.tasks) == 0 {
		return nil
	}
	store, model := c.Memory(), c.Model()
	if store == nil || model == nil {
		return fmt.Errorf("%w: creature %d has memory scope %s, model scope %s",
			ErrBindingMissing, c.ID(), c.bindings.MemoryScope, c.bindings.ModelScope)
	}

	fit := func(X [][]float64, y []float64) error {
		labels := make([]bool, len(y))
		for i, v := range y {
			labels[i] = v > 0.5
		}
		return model.Fit(X, labels)
	}

	batch := c.bindings.BatchSize
	for _, kind := range c.recordedKinds() {
		fitted, err := store.Retrain(kind.String(), batch, fit)
		if err != nil {
			slog.Warn("retrain failed", "creature", c.ID(), "kind", kind.String(), "error", err)
			continue
		}
		if fitted {
			if g := c.Grid(); g != nil {
				slog.Debug("decision model retrained", "tick", g.Epoch(), "creature", c.ID(), "kind", kind.String())
				g.Emit(grid.EventRetrain, fmt.Sprintf("%s retrained on %s", c.Label(), kind))
			}
		}
	}
	return nil
}

func (c *Creature) recordedKinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(c.tasks))
	for k := range c.tasks {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
