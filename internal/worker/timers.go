// Package worker runs the background side of the scheduler: in-process
// one-shot timers for pending batches and a poller that fires overdue
// batches and applies retention.
package worker

import (
	"sync"
	"time"
)

// Timers is an in-process registry of one-shot callbacks keyed by id. It
// satisfies services.OneShot.
//
// A callback whose instant already passed runs on its own goroutine
// almost immediately. Callbacks never run under the registry lock.
type Timers struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	now     func() time.Time
	stopped bool
	running sync.WaitGroup
}

// NewTimers returns an empty registry. now defaults to time.Now.
func NewTimers(now func() time.Time) *Timers {
	if now == nil {
		now = time.Now
	}
	return &Timers{pending: make(map[string]*time.Timer), now: now}
}

// Register arms fn to run once at at. Registering an id again replaces the
// previous callback. Register after Stop is ignored.
func (t *Timers) Register(id string, at time.Time, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if old, ok := t.pending[id]; ok {
		old.Stop()
	}
	d := at.Sub(t.now())
	if d < 0 {
		d = 0
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.pending[id] != timer {
			t.mu.Unlock()
			return
		}
		delete(t.pending, id)
		if t.stopped {
			t.mu.Unlock()
			return
		}
		t.running.Add(1)
		t.mu.Unlock()
		defer t.running.Done()
		fn()
	})
	t.pending[id] = timer
}

// Cancel stops the callback for id. It reports whether one was pending.
func (t *Timers) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer, ok := t.pending[id]
	if !ok {
		return false
	}
	delete(t.pending, id)
	timer.Stop()
	return true
}

// Len returns the number of armed callbacks.
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Stop disarms every callback and blocks until callbacks already running
// have returned. Pending batches are picked up again by RecoverPending on
// the next start.
func (t *Timers) Stop() {
	t.mu.Lock()
	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
	}
	t.stopped = true
	t.mu.Unlock()
	t.running.Wait()
}
