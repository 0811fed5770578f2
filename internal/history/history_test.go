package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mooselabs/unitymcp/internal/moose"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordStart(ctx, Scope{Class: "FooTests", Method: "Bar"})
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if id == "" {
		t.Fatal("RecordStart() returned empty id")
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Class != "FooTests" || r.Method != "Bar" {
		t.Errorf("scope = %q/%q", r.Class, r.Method)
	}
	if r.Status != moose.StatusPending {
		t.Errorf("status = %q, want %q", r.Status, moose.StatusPending)
	}
	if r.Ended {
		t.Error("run should not be ended yet")
	}
}

func TestRecordResult(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordStart(ctx, Scope{Assembly: "Game.Tests"})
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}

	sum := moose.Summary{Status: moose.ResultPassed, Total: 12, Passed: 11, Failed: 1}
	if err := s.RecordResult(ctx, id, moose.StatusCompleted, moose.ResultPassed, sum); err != nil {
		t.Fatalf("RecordResult() error = %v", err)
	}

	runs, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	r := runs[0]
	if !r.Ended {
		t.Error("run should be ended")
	}
	if r.Total != 12 || r.Passed != 11 || r.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", r.Total, r.Passed, r.Failed)
	}
	if r.Result != moose.ResultPassed {
		t.Errorf("result = %q", r.Result)
	}

	// Recording again must not clobber the first result.
	if err := s.RecordResult(ctx, id, moose.StatusError, "", moose.Summary{}); err != nil {
		t.Fatalf("second RecordResult() error = %v", err)
	}
	runs, _ = s.Recent(ctx, 1)
	if runs[0].Result != moose.ResultPassed {
		t.Error("second RecordResult should be a no-op on an ended run")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.RecordStart(ctx, Scope{Class: "C"}); err != nil {
			t.Fatalf("RecordStart() error = %v", err)
		}
	}

	runs, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i-1].StartedAt.Before(runs[i].StartedAt) {
			t.Error("runs not in most-recent-first order")
		}
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.RecordStart(ctx, Scope{Class: "Old"})
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if err := s.RecordResult(ctx, id, moose.StatusCompleted, moose.ResultPassed, moose.Summary{Total: 1, Passed: 1}); err != nil {
		t.Fatalf("RecordResult() error = %v", err)
	}

	// Nothing is older than an hour yet.
	n, err := s.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 0 {
		t.Errorf("pruned %d runs, want 0", n)
	}

	// Everything ended before "now minus negative duration".
	n, err = s.Prune(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d runs, want 1", n)
	}
}
