package agents

// LogEntry records a finished action in a creature's history.
type LogEntry struct {
	Tick         uint64     `json:"tick"`
	Kind         ActionKind `json:"kind"`
	Done         bool       `json:"done"`
	Accomplished bool       `json:"accomplished"`
}

// ActionLog is a bounded history of dequeued actions, oldest first. When full
// the oldest entry is dropped.
type ActionLog struct {
	entries []LogEntry
	limit   int
}

// Add appends an entry, evicting the oldest when the log is full.
func (l *ActionLog) Add(e LogEntry) {
	if l.limit <= 0 {
		return
	}
	if len(l.entries) >= l.limit {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Len returns the number of entries held.
func (l *ActionLog) Len() int { return len(l.entries) }

// Entries returns a copy of the log, oldest first.
func (l *ActionLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns the most recent count entries, newest first.
func (l *ActionLog) Recent(count int) []LogEntry {
	if count > len(l.entries) {
		count = len(l.entries)
	}
	out := make([]LogEntry, 0, count)
	for i := len(l.entries) - 1; i >= len(l.entries)-count; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Count returns how many logged actions of kind ended accomplished.
func (l *ActionLog) Count(kind ActionKind, accomplished bool) int {
	n := 0
	for _, e := range l.entries {
		if e.Kind == kind && e.Accomplished == accomplished {
			n++
		}
	}
	return n
}
