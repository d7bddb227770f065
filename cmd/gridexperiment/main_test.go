package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/talgya/gridlife/internal/engine"
)

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestReportReturnsWriteErrors(t *testing.T) {
	trials := []engine.Trial{{Index: 0, Score: 2}}
	for _, asJSON := range []bool{true, false} {
		if err := report(failingWriter{}, trials, asJSON); !errors.Is(err, errWrite) {
			t.Fatalf("json=%v: err = %v, want write error", asJSON, err)
		}
	}
}

func TestReportFormats(t *testing.T) {
	trials := []engine.Trial{{Index: 0, Score: 2, Ticks: 1500}, {Index: 1, Score: 4}}

	var text bytes.Buffer
	if err := report(&text, trials, false); err != nil {
		t.Fatalf("text: %v", err)
	}
	out := text.String()
	if !strings.Contains(out, "Iteration: 1  Score: 2  Ticks: 1,500") || !strings.Contains(out, "Mean score over 2 trials: 3.000") {
		t.Fatalf("text output:\n%s", out)
	}

	var js bytes.Buffer
	if err := report(&js, trials, true); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back []engine.Trial
	if err := json.Unmarshal(js.Bytes(), &back); err != nil || len(back) != 2 || back[1].Score != 4 {
		t.Fatalf("json output %q: %v", js.String(), err)
	}
}
