// Package memory stores experience records: a feature snapshot taken when an
// action is queued and the outcome observed when it completes. A store can be
// private to one creature or shared by many; all methods are safe for
// concurrent use.
package memory

import "sync"

// DefaultCapacity bounds a store created with a non-positive capacity.
const DefaultCapacity = 1024

// Key identifies the action instance a record belongs to.
type Key uint64

// Record is one experience row. It is complete once an outcome is attached.
type Record struct {
	Label      string    `json:"label"`
	Features   []float64 `json:"features"`
	Outcome    float64   `json:"outcome"`
	HasOutcome bool      `json:"has_outcome"`
}

// FitFunc trains a decision policy on a feature table and its outcome column.
type FitFunc func(X [][]float64, y []float64) error

// Store holds experience records in insertion order.
type Store struct {
	mu       sync.Mutex
	capacity int
	records  map[Key]*Record
	order    []Key
}

// New creates a store that keeps at most capacity records, evicting the
// oldest when full.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		records:  make(map[Key]*Record),
	}
}

// SaveState records the feature snapshot for key. Saving over an existing
// key replaces its record.
func (s *Store) SaveState(key Key, label string, features []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]float64, len(features))
	copy(snapshot, features)

	if _, exists := s.records[key]; !exists {
		if len(s.order) >= s.capacity {
			s.evictOldest()
		}
		s.order = append(s.order, key)
	}
	s.records[key] = &Record{Label: label, Features: snapshot}
}

// SaveResult attaches an outcome to the record for key. It returns false
// when there is no state snapshot for key; the outcome is then dropped.
func (s *Store) SaveResult(key Key, outcome float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return false
	}
	rec.Outcome = outcome
	rec.HasOutcome = true
	return true
}

// Discard drops the record for key, complete or not.
func (s *Store) Discard(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(key)
}

// Get returns a copy of the record for key.
func (s *Store) Get(key Key) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Features = append([]float64(nil), rec.Features...)
	return out, true
}

// Len returns the number of records, complete or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Complete returns the number of complete records carrying label.
func (s *Store) Complete(label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	X, _ := s.table(label)
	return len(X)
}

// Table returns the complete records for label as rows of features with the
// outcome appended as the last column.
func (s *Store) Table(label string) [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	X, y := s.table(label)
	rows := make([][]float64, len(X))
	for i := range X {
		row := make([]float64, 0, len(X[i])+1)
		row = append(row, X[i]...)
		rows[i] = append(row, y[i])
	}
	return rows
}

// Forget purges every record.
func (s *Store) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forget()
}

// Retrain fits when at least batch complete records carry label, then purges
// the whole store. The table is built, fitted and purged under one lock so
// creatures sharing the store never observe a half-reset state. On a fit
// error nothing is purged.
func (s *Store) Retrain(label string, batch int, fit FitFunc) (bool, error) {
	if batch < 1 {
		batch = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	X, y := s.table(label)
	if len(X) < batch {
		return false, nil
	}
	if err := fit(X, y); err != nil {
		return false, err
	}
	s.forget()
	return true, nil
}

// table collects complete rows of a single width, the width of the first
// complete row.
func (s *Store) table(label string) ([][]float64, []float64) {
	var X [][]float64
	var y []float64
	width := -1
	for _, key := range s.order {
		rec := s.records[key]
		if rec.Label != label || !rec.HasOutcome {
			continue
		}
		if width < 0 {
			width = len(rec.Features)
		}
		if len(rec.Features) != width {
			continue
		}
		X = append(X, append([]float64(nil), rec.Features...))
		y = append(y, rec.Outcome)
	}
	return X, y
}

func (s *Store) forget() {
	s.records = make(map[Key]*Record)
	s.order = s.order[:0]
}

func (s *Store) evictOldest() {
	if len(s.order) == 0 {
		return
	}
	delete(s.records, s.order[0])
	s.order = s.order[1:]
}

func (s *Store) remove(key Key) {
	if _, ok := s.records[key]; !ok {
		return
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
