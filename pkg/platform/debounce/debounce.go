// Package debounce provides a restartable, cancellable delay.
//
// Each Trigger cancels the pending call and restarts the delay; calls are never
// queued or coalesced. Cancel and Close make cancellation structural: a callback
// whose generation was superseded does not run.
package debounce

import (
	"sync"
	"time"
)

// Timer runs the most recently triggered callback once the delay elapses
// without another Trigger.
type Timer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	gen    uint64
	closed bool
}

func New(delay time.Duration) *Timer {
	return &Timer{delay: delay}
}

// Trigger schedules fn after the delay, cancelling any pending callback.
// It is a no-op after Close.
func (t *Timer) Trigger(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.delay, func() {
		if !t.current(gen) {
			return
		}
		fn()
	})
}

func (t *Timer) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.gen {
		return false
	}
	t.timer = nil
	return true
}

// Cancel drops the pending callback. It reports whether one was pending.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelLocked()
}

func (t *Timer) cancelLocked() bool {
	t.gen++
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}

// Pending reports whether a callback is scheduled.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Close cancels the pending callback and rejects future triggers.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.closed = true
}

// Group holds one Timer per key, all sharing the same delay.
type Group struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*Timer
}

func NewGroup(delay time.Duration) *Group {
	return &Group{delay: delay, timers: make(map[string]*Timer)}
}

// Trigger restarts the timer for key.
func (g *Group) Trigger(key string, fn func()) {
	g.mu.Lock()
	t, ok := g.timers[key]
	if !ok {
		t = New(g.delay)
		g.timers[key] = t
	}
	g.mu.Unlock()
	t.Trigger(fn)
}

// Cancel drops the pending callback for key.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	t := g.timers[key]
	g.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// CancelAll drops every pending callback. Timers stay usable.
func (g *Group) CancelAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.timers {
		t.Cancel()
	}
}

// Close cancels every timer and rejects future triggers on existing keys.
func (g *Group) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.timers {
		t.Close()
	}
}

// Pending counts keys with a scheduled callback.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, t := range g.timers {
		if t.Pending() {
			n++
		}
	}
	return n
}
