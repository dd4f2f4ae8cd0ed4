package corosched

import (
	"sync"
	"time"
)

// Timer is the external platform timer contract the scheduler requires
// (spec §6.2). An implementation must, when Start is called, asynchronously
// set TimedOut's Condition after the requested number of milliseconds
// elapses, exactly once, until Cancel or a subsequent Start rearms it.
// Cancel must be idempotent and safe to call whether or not the timer is
// currently armed.
//
// A hardware timer driver implements this directly against a peripheral;
// [StdTimer] is the hosted reference implementation, built on
// time.AfterFunc.
type Timer interface {
	// TimedOut returns the Condition this timer sets on expiry. The same
	// Condition instance is returned on every call.
	TimedOut() *Condition

	// Start arms the timer to set TimedOut() after ms milliseconds.
	Start(ms int)

	// Cancel disarms the timer. Idempotent.
	Cancel()
}

// StdTimer is a [Timer] built on the standard library's time.AfterFunc. It
// is the runtime's default timer, suitable for hosted testing and for any
// target where a goroutine-capable runtime is available; firmware targets
// supply their own Timer backed by a hardware peripheral instead.
type StdTimer struct {
	mu         sync.Mutex
	cond       Condition
	t          *time.Timer
	generation uint64
}

// NewStdTimer returns a disarmed StdTimer.
func NewStdTimer() *StdTimer {
	return &StdTimer{}
}

// TimedOut implements Timer.
func (s *StdTimer) TimedOut() *Condition {
	return &s.cond
}

// Start implements Timer. Starting an already-armed timer rearms it: the
// previous deadline no longer fires.
func (s *StdTimer) Start(ms int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.t != nil {
		s.t.Stop()
	}
	s.cond.Clear()
	s.generation++
	gen := s.generation

	s.t = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		s.mu.Lock()
		fired := gen == s.generation
		if fired {
			s.cond.Set()
		}
		s.mu.Unlock()
		if fired {
			logTimerFired()
		}
	})
}

// Cancel implements Timer. Idempotent: calling it on a disarmed timer, or
// repeatedly, is a no-op beyond invalidating any in-flight fire.
func (s *StdTimer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
	s.generation++
}
