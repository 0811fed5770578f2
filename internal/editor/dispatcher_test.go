package editor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mooselabs/unitymcp/internal/clog"
)

func TestDispatcherRunsTasksInOrder(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	var got []int
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		i := i
		d.Enqueue(func() { got = append(got, i) })
	}
	d.Enqueue(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tasks")
	}

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("tasks ran out of order: %v", got)
	}
}

func TestDispatcherEnqueueDoesNotBlock(t *testing.T) {
	d := NewDispatcher()
	defer d.Stop()

	blocker := make(chan struct{})
	d.Enqueue(func() { <-blocker })

	start := time.Now()
	for i := 0; i < 1000; i++ {
		d.Enqueue(func() {})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Enqueue blocked for %v with a stalled loop", elapsed)
	}
	close(blocker)
}

func TestDispatcherRecoversPanics(t *testing.T) {
	clog.Discard()
	defer clog.Reset()

	d := NewDispatcher()
	defer d.Stop()

	var ran atomic.Bool
	done := make(chan struct{})
	d.Enqueue(func() { panic("repair failed") })
	d.Enqueue(func() { ran.Store(true); close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop died after panicking task")
	}
	if !ran.Load() {
		t.Error("task after panic did not run")
	}
}

func TestDispatcherStopDrainsQueue(t *testing.T) {
	d := NewDispatcher()

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		d.Enqueue(func() { count.Add(1) })
	}
	d.Stop()

	if got := count.Load(); got != 10 {
		t.Errorf("ran %d tasks before stop, want 10", got)
	}

	// Enqueue after stop is a silent drop.
	d.Enqueue(func() { count.Add(1) })
	if got := count.Load(); got != 10 {
		t.Errorf("task ran after stop: count = %d", got)
	}
}
