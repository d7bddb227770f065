package agents

// chain drives a composite behavior: a short state machine over sub-actions.
// current is nil until the first feasibility check and nil again once the
// chain is terminal.
type chain struct {
	action
	current Action
	entered bool

	enter   func() Action
	advance func(finished Action, r Result) Action
}

// Current returns the active sub-action, or nil.
func (ch *chain) Current() Action { return ch.current }

func (ch *chain) begin() {
	if ch.entered || ch.done {
		return
	}
	ch.entered = true
	ch.current = ch.enter()
}

func (ch *chain) terminate(accomplished bool) {
	ch.current = nil
	ch.finish(accomplished)
}

func (ch *chain) Feasible() bool {
	if ch.done {
		return false
	}
	ch.begin()
	return ch.current != nil && ch.current.Feasible()
}

// drive runs the active sub-action and keeps going while the following
// sub-actions are instant. Only the first sub-action of a tick may be a
// blocking one, and a blocking sub-action always ends the tick.
func (ch *chain) drive() {
	if ch.done {
		return
	}
	if !ch.Feasible() {
		ch.terminate(false)
		return
	}

	first := true
	for ch.current != nil {
		cur := ch.current
		if !first && !cur.Instant() {
			return
		}
		first = false

		r := RunToResult(cur)
		if !r.Done {
			if !cur.Feasible() {
				ch.terminate(false)
			}
			return
		}
		if !r.Accomplished {
			ch.terminate(false)
			return
		}

		ch.current = ch.advance(cur, r)
		if ch.current == nil {
			ch.terminate(true)
			return
		}
		if !cur.Instant() {
			return
		}
	}
}
