package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// outcome is one recorded collaborator call: true for success.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func replay(b *Breaker, calls ...outcome) (degraded bool, last StateChange) {
	for _, c := range calls {
		if c == ok {
			var primary bool
			primary, last = b.RecordSuccess()
			degraded = !primary
		} else {
			degraded, last = b.RecordFailure()
		}
	}
	return degraded, last
}

func TestBreakerSequences(t *testing.T) {
	tests := map[string]struct {
		opts         []Option
		calls        []outcome
		wantOpen     bool
		wantDegraded bool
		wantChange   StateChange
	}{
		"failures below threshold keep it closed": {
			opts:  []Option{WithFailureThreshold(3)},
			calls: []outcome{fail, fail},
		},
		"threshold failure opens": {
			opts:         []Option{WithFailureThreshold(3)},
			calls:        []outcome{fail, fail, fail},
			wantOpen:     true,
			wantDegraded: true,
			wantChange:   StateChange{Opened: true},
		},
		"success resets the failure run": {
			opts:  []Option{WithFailureThreshold(3)},
			calls: []outcome{fail, fail, ok, fail, fail},
		},
		"failure while open reports no new transition": {
			opts:         []Option{WithFailureThreshold(1)},
			calls:        []outcome{fail, fail},
			wantOpen:     true,
			wantDegraded: true,
		},
		"one success is not enough to close": {
			opts:         []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			calls:        []outcome{fail, ok},
			wantOpen:     true,
			wantDegraded: true,
		},
		"success threshold closes": {
			opts:       []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			calls:      []outcome{fail, ok, ok},
			wantChange: StateChange{Closed: true},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			b := New("verification", tc.opts...)
			degraded, change := replay(b, tc.calls...)
			assert.Equal(t, tc.wantOpen, b.IsOpen())
			assert.Equal(t, tc.wantDegraded, degraded)
			assert.Equal(t, tc.wantChange, change)
		})
	}
}

func TestBreakerStartsClosed(t *testing.T) {
	b := New("identity")
	assert.Equal(t, "identity", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerReset(t *testing.T) {
	b := New("submission", WithFailureThreshold(1))
	replay(b, fail)
	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	b := New("verification",
		WithFailureThreshold(1),
		WithCooldown(5*time.Second),
		withClock(func() time.Time { return now }),
	)
	replay(b, fail)

	for _, step := range []struct {
		advance time.Duration
		allow   bool
	}{
		{0, false},
		{4 * time.Second, false},
		{time.Second, true},
	} {
		now = now.Add(step.advance)
		assert.Equal(t, step.allow, b.Allow(), "at %s", now.Format(time.TimeOnly))
	}
}
