package editor

import (
	"sync"

	"github.com/mooselabs/unitymcp/internal/clog"
)

// Dispatcher serializes work onto a single privileged goroutine, standing
// in for the editor's main-thread callback queue. Host-only APIs may only
// be touched from inside a dispatched task.
//
// Enqueue never blocks the caller, and a panicking task never takes the
// loop down: each task runs inside its own recovery boundary.
type Dispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	done    chan struct{}
}

// NewDispatcher creates a dispatcher and starts its run loop.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Enqueue schedules fn to run on the dispatcher goroutine. It returns
// immediately; fn runs after all previously enqueued tasks complete.
// Tasks enqueued after Stop are dropped.
func (d *Dispatcher) Enqueue(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
}

// Stop shuts down the run loop after draining already-queued tasks and
// waits for it to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.stopped = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}

// run executes tasks in order until stopped.
func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.stopped {
			d.cond.Wait()
		}
		if len(d.queue) == 0 && d.stopped {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.invoke(fn)
	}
}

// invoke runs one task inside a recovery boundary.
func (d *Dispatcher) invoke(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			clog.Error("dispatcher task panicked: %v", rec)
		}
	}()
	fn()
}
