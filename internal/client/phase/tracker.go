// Package phase classifies the elapsed time of an in-flight operation into
// user-facing phases: loading, then "still working", then failed.
//
// A Tracker watches one operation. Mark it active when the operation starts
// and inactive when it settles; the two delayed transitions are scheduled
// on activation and cancelled on deactivation.
package phase

import (
	"sync"
	"time"

	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
)

// Phase is the feedback state shown for a tracked operation.
type Phase string

const (
	Loading      Phase = "loading"
	StillWorking Phase = "still_working"
	Failed       Phase = "failed"
)

// Timer is the subset of *time.Timer the tracker needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Tracker.
type Option func(*Tracker)

// WithOnChange registers a callback invoked after every phase change. It is
// called outside the tracker lock and may call back into the tracker.
func WithOnChange(fn func(Phase)) Option {
	return func(t *Tracker) { t.onChange = fn }
}

// WithAfterFunc replaces the timer scheduler, for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(t *Tracker) { t.afterFunc = fn }
}

// Tracker is safe for concurrent use. Timer callbacks run on their own
// goroutines; a generation counter drops callbacks that belong to an earlier
// activation.
type Tracker struct {
	mu        sync.Mutex
	bounds    timebounds.TimeBound
	phase     Phase
	active    bool
	startedAt time.Time
	gen       uint64
	timers    []Timer
	onChange  func(Phase)
	afterFunc AfterFunc
}

// NewTracker returns an inactive tracker in the Loading phase.
func NewTracker(bounds timebounds.TimeBound, opts ...Option) *Tracker {
	t := &Tracker{
		bounds:    bounds,
		phase:     Loading,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetActive reports whether the tracked operation is in flight.
//
// A false→true transition restarts the clock in the Loading phase.
// A true→false transition cancels pending transitions and leaves the phase
// as it is; callers stop rendering it once data arrived.
func (t *Tracker) SetActive(active bool) {
	t.mu.Lock()
	if active == t.active {
		t.mu.Unlock()
		return
	}
	t.active = active
	t.stopTimersLocked()

	if !active {
		t.mu.Unlock()
		return
	}

	t.startedAt = time.Now()
	gen := t.gen
	changed := t.phase != Loading
	t.phase = Loading
	t.timers = []Timer{
		t.afterFunc(t.bounds.StillWorking, func() { t.transition(gen, StillWorking) }),
		t.afterFunc(t.bounds.Fail, func() { t.transition(gen, Failed) }),
	}
	t.mu.Unlock()

	if changed {
		t.notify(Loading)
	}
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Elapsed returns the time since the current activation, or zero when the
// tracker was never activated.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

// Stop cancels pending transitions. The tracker may be reactivated later.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = false
	t.stopTimersLocked()
}

func (t *Tracker) stopTimersLocked() {
	for _, tm := range t.timers {
		tm.Stop()
	}
	t.timers = nil
	t.gen++
}

func (t *Tracker) transition(gen uint64, p Phase) {
	t.mu.Lock()
	// Failed is terminal for an activation.
	if gen != t.gen || t.phase == p || t.phase == Failed {
		t.mu.Unlock()
		return
	}
	t.phase = p
	t.mu.Unlock()

	t.notify(p)
}

func (t *Tracker) notify(p Phase) {
	if t.onChange != nil {
		t.onChange(p)
	}
}
