package corosched

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrQueueFull is returned by Schedule.Enqueue when the target priority
	// level's queue has no free slots (spec §7 "Enqueue full").
	ErrQueueFull = errors.New("corosched: queue full")

	// ErrScheduleRunning is returned when a Schedule that is already running
	// its main loop — including a reentrant call from within a coroutine
	// body running on that same schedule — is asked to Run again. It is also
	// returned by Run on a Schedule whose earlier Run has already returned.
	ErrScheduleRunning = errors.New("corosched: schedule is already running")
)

// PanicError wraps a value recovered from a coroutine body panic.
//
// The scheduler never lets a panicking coroutine bring down the main loop:
// the panic is recovered, wrapped in a PanicError, logged via [Logger], and
// stored on the offending [CoroState] (retrievable with
// [CoroState.LastPanic]) before the coroutine is forced to FINALIZE.
type PanicError struct {
	// Value is whatever was passed to panic().
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("corosched: coroutine panicked: %v", e.Value)
}

// Unwrap returns the underlying error if Value is itself an error, enabling
// errors.Is/errors.As through the cause chain.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
