// logging.go - structured logging for corosched, in the style of
// eventloop's package-level SetStructuredLogger/getGlobalLogger, but backed
// by the logiface facade (github.com/joeycumines/logiface) and the stumpy
// zero-allocation-biased backend (github.com/joeycumines/stumpy), the same
// pairing the teacher module uses.
//
// Design decision: a package-level logger, not a per-Schedule one, because
// every Schedule in a process shares the same logging semantics and
// embedded targets want zero per-instance configuration surface.
package corosched

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Event is the concrete logiface event type used by this package's logger.
type Event = stumpy.Event

var globalLogger struct {
	sync.RWMutex
	logger *logiface.Logger[*Event]
}

func init() {
	// Disabled by default: embedding firmware pays nothing unless it opts in.
	globalLogger.logger = stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))
}

// SetLogger installs the package-level structured logger used by all
// Schedule instances. Pass nil to restore the disabled default.
func SetLogger(logger *logiface.Logger[*Event]) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	if logger == nil {
		logger = stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))
	}
	globalLogger.logger = logger
}

// Logger returns the current package-level structured logger.
func Logger() *logiface.Logger[*Event] {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}

// log categories, attached as the "cat" field to every entry this package
// emits.
const (
	catScheduler = "scheduler"
	catQueue     = "queue"
	catResource  = "resource"
	catTimer     = "timer"
)

func logPanic(priority int, err PanicError) {
	Logger().Err().
		Str("cat", catScheduler).
		Int("priority", priority).
		Err(err).
		Log("coroutine body panicked; forcing FINALIZE")
}

func logQueueFull(priority int) {
	Logger().Warning().
		Str("cat", catQueue).
		Int("priority", priority).
		Log("enqueue rejected: queue full")
}

func logReleaseMismatch(priority int) {
	Logger().Debug().
		Str("cat", catQueue).
		Int("priority", priority).
		Log("read_release no-op: record is not the oldest readable entry")
}

func logPreempted(newPriority, oldPriority int32) {
	Logger().Info().
		Str("cat", catResource).
		Int("new_priority", int(newPriority)).
		Int("old_priority", int(oldPriority)).
		Log("resource acquired via preemption")
}

func logTimerFired() {
	Logger().Debug().
		Str("cat", catTimer).
		Log("timer expired")
}
