// state.go - a CAS-guarded lifecycle state machine, grounded on
// eventloop/state.go's FastState: a single atomic.Uint64 driven entirely by
// CompareAndSwap, with no locks anywhere in the hot path.
package corosched

import "sync/atomic"

// LoopState is one of a Schedule's lifecycle states.
type LoopState uint64

const (
	// StateAwake is the initial state: constructed, not yet running.
	StateAwake LoopState = iota
	// StateRunning means a Run call currently owns the schedule's main
	// loop.
	StateRunning
	// StateTerminated is terminal: Run has returned once and will refuse
	// to run again.
	StateTerminated
)

// FastState is a lock-free lifecycle cell: every transition is a single
// CompareAndSwap, so querying or transitioning it never blocks, including
// from the coroutine bodies it indirectly guards against.
type FastState struct {
	v atomic.Uint64
}

// NewFastState returns a FastState initialized to StateAwake.
func NewFastState() *FastState {
	return &FastState{}
}

// Load returns the current state.
func (f *FastState) Load() LoopState {
	return LoopState(f.v.Load())
}

// Store unconditionally sets the state, bypassing the transition graph.
// Used only to record terminal states that can't be raced (e.g. Run's
// deferred shutdown, which no other goroutine can be concurrently
// transitioning away from StateRunning).
func (f *FastState) Store(s LoopState) {
	f.v.Store(uint64(s))
}

// TryTransition attempts to move the state from from to to, succeeding
// only if the current state is still from at the instant of the
// compare-and-swap.
func (f *FastState) TryTransition(from, to LoopState) bool {
	return f.v.CompareAndSwap(uint64(from), uint64(to))
}
