package memory

import (
	"errors"
	"sync"
	"testing"
)

func TestIncompleteRecordsAreExcluded(t *testing.T) {
	s := New(10)
	s.SaveState(1, "go_mating", []float64{1, 2})
	s.SaveState(2, "go_mating", []float64{3, 4})
	if !s.SaveResult(2, 1) {
		t.Fatalf("save result on known key failed")
	}
	if s.SaveResult(99, 1) {
		t.Fatalf("save result without state should be dropped")
	}

	rows := s.Table("go_mating")
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want one complete row", rows)
	}
	if got := rows[0]; len(got) != 3 || got[0] != 3 || got[2] != 1 {
		t.Fatalf("row = %v", got)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
}

func TestTableFiltersLabel(t *testing.T) {
	s := New(10)
	s.SaveState(1, "forage", []float64{1})
	s.SaveResult(1, 0)
	s.SaveState(2, "go_mating", []float64{2})
	s.SaveResult(2, 1)
	if n := s.Complete("forage"); n != 1 {
		t.Fatalf("complete forage = %d", n)
	}
	if n := s.Complete("mate"); n != 0 {
		t.Fatalf("complete mate = %d", n)
	}
}

func TestRetrainBatchAndReset(t *testing.T) {
	const batch = 4
	s := New(100)
	fits := 0
	fit := func(X [][]float64, y []float64) error {
		fits++
		if len(X) != batch || len(y) != batch {
			t.Fatalf("fit got %d rows, %d labels", len(X), len(y))
		}
		return nil
	}

	for i := 0; i < batch-1; i++ {
		s.SaveState(Key(i), "go_mating", []float64{float64(i)})
		s.SaveResult(Key(i), float64(i%2))
	}
	if ok, err := s.Retrain("go_mating", batch, fit); ok || err != nil {
		t.Fatalf("retrain below batch: ok=%v err=%v", ok, err)
	}

	s.SaveState(Key(batch), "go_mating", []float64{9})
	s.SaveResult(Key(batch), 1)
	s.SaveState(Key(batch+1), "go_mating", []float64{7}) // incomplete, purged too

	ok, err := s.Retrain("go_mating", batch, fit)
	if err != nil || !ok {
		t.Fatalf("retrain at batch: ok=%v err=%v", ok, err)
	}
	if fits != 1 {
		t.Fatalf("fit called %d times, want 1", fits)
	}
	if s.Len() != 0 {
		t.Fatalf("store holds %d records after retrain", s.Len())
	}
}

func TestRetrainKeepsRecordsOnFitError(t *testing.T) {
	s := New(10)
	s.SaveState(1, "x", []float64{1})
	s.SaveResult(1, 1)
	boom := errors.New("boom")
	if _, err := s.Retrain("x", 1, func([][]float64, []float64) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("records purged after failed fit")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := New(3)
	for i := 1; i <= 5; i++ {
		s.SaveState(Key(i), "x", []float64{float64(i)})
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Fatalf("oldest record survived eviction")
	}
	if _, ok := s.Get(5); !ok {
		t.Fatalf("newest record evicted")
	}
}

func TestDiscard(t *testing.T) {
	s := New(10)
	s.SaveState(1, "x", []float64{1})
	s.Discard(1)
	s.Discard(42)
	if s.Len() != 0 {
		t.Fatalf("len = %d after discard", s.Len())
	}
}

func TestConcurrentWriters(t *testing.T) {
	s := New(10000)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := Key(w*1000 + i)
				s.SaveState(k, "x", []float64{float64(i)})
				s.SaveResult(k, 1)
				if i%25 == 0 {
					_, _ = s.Retrain("x", 50, func([][]float64, []float64) error { return nil })
				}
			}
		}(w)
	}
	wg.Wait()
	if s.Len() > 800 {
		t.Fatalf("len = %d", s.Len())
	}
}
