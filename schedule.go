// schedule.go - the priority-ordered scheduler main loop, grounded on
// eventloop/loop.go's Loop.Run pass structure, FastState-guarded lifecycle,
// and context-cancellable shutdown, generalized from two fixed lanes
// (internal/external) to an arbitrary caller-supplied number of strictly
// ordered priority levels (spec §4.2).
package corosched

import (
	"context"
)

// scheduleState mirrors eventloop/state.go's FastState, reused here to
// guard Schedule.Run against concurrent/reentrant invocation.
type scheduleState = LoopState

const (
	scheduleAwake      = StateAwake
	scheduleRunning    = StateRunning
	scheduleTerminated = StateTerminated
)

// CoroScheduleQueue is one priority level's queue of [CoroState] (spec §3).
type CoroScheduleQueue struct {
	priority int
	queue    NestedQueue[*CoroState]
	metrics  levelMetrics
}

// Priority returns this queue's priority level (0 = highest).
func (q *CoroScheduleQueue) Priority() int {
	return q.priority
}

// Schedule is an ordered, immutable (after construction) vector of
// [CoroScheduleQueue], index 0 highest priority (spec §3
// "CoroSchedule"), plus the main loop that drives them (spec §4.2).
type Schedule struct {
	queues []*CoroScheduleQueue

	state     *FastState
	metricsOn bool
}

// New constructs a Schedule with levels [CoroScheduleQueue] values, numbered
// 0 through levels-1 — index 0 is highest priority, matching spec §3's
// "ordered array... index 0 = highest priority". Panics if levels is not
// positive.
func New(levels int, opts ...ScheduleOption) *Schedule {
	if levels <= 0 {
		panic("corosched: Schedule requires at least one priority level")
	}
	cfg := resolveScheduleOptions(opts)

	sch := &Schedule{
		state:     NewFastState(),
		metricsOn: cfg.metricsEnabled,
	}
	sch.queues = make([]*CoroScheduleQueue, levels)
	for i := range sch.queues {
		sch.queues[i] = &CoroScheduleQueue{
			priority: i,
			queue:    NewRingQueue[*CoroState](cfg.queueCapacity),
		}
	}
	return sch
}

// Levels returns the number of priority levels this Schedule was
// constructed with.
func (sch *Schedule) Levels() int {
	return len(sch.queues)
}

// Enqueue adds a new coroutine to the queue at the given priority level,
// returning its [CoroState], or ErrQueueFull if that level's queue has no
// free slots (spec §6.3, §7 "Enqueue full"). Safe to call concurrently,
// including from interrupt service routines.
func (sch *Schedule) Enqueue(priority int, fn Func, vars any) (*CoroState, error) {
	return sch.enqueueState(priority, NewCoroState(fn, vars, nil))
}

// EnqueueWithTimer is like Enqueue but lets the caller supply the Timer
// the coroutine's timed waits will use (e.g. a hardware timer driver),
// instead of the lazily allocated [StdTimer] default.
func (sch *Schedule) EnqueueWithTimer(priority int, fn Func, vars any, timer Timer) (*CoroState, error) {
	return sch.enqueueState(priority, NewCoroState(fn, vars, timer))
}

func (sch *Schedule) enqueueState(priority int, s *CoroState) (*CoroState, error) {
	q := sch.levelQueue(priority)
	if _, ok := q.queue.Enqueue(s); !ok {
		if sch.metricsOn {
			q.metrics.rejected.Add(1)
		}
		logQueueFull(priority)
		return nil, ErrQueueFull
	}
	if sch.metricsOn {
		q.metrics.enqueued.Add(1)
	}
	return s, nil
}

func (sch *Schedule) levelQueue(priority int) *CoroScheduleQueue {
	if priority < 0 || priority >= len(sch.queues) {
		panic("corosched: priority out of range")
	}
	return sch.queues[priority]
}

// Metrics returns a point-in-time snapshot of every level's counters. If
// metrics collection was not enabled via [WithMetrics], every counter is
// zero.
func (sch *Schedule) Metrics() Metrics {
	levels := make([]LevelSnapshot, len(sch.queues))
	for i, q := range sch.queues {
		levels[i] = q.metrics.snapshot(q.priority)
	}
	return Metrics{Levels: levels}
}

// Run enters the scheduler main loop (spec §4.2): an infinite loop that,
// per pass, visits each priority level from highest (index 0) to lowest,
// snapshotting and fully sweeping one level before moving to the next,
// then restarting from the top. Run blocks until ctx is canceled, at which
// point it returns ctx.Err(); this is the one concession to hosting Run
// inside a normal Go program instead of a truly non-returning firmware
// main loop (spec §9 Open Questions: "the outer infinite loop [is]
// authoritative").
//
// Run returns ErrScheduleRunning if called while already running, modeled
// on eventloop.ErrLoopAlreadyRunning / ErrReentrantRun. A Schedule runs at
// most once: Run also returns ErrScheduleRunning after a previous Run has
// returned.
func (sch *Schedule) Run(ctx context.Context) error {
	if !sch.state.TryTransition(scheduleAwake, scheduleRunning) {
		return ErrScheduleRunning
	}
	defer sch.state.Store(scheduleTerminated)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, q := range sch.queues {
			sch.sweep(q)
		}
	}
}

// sweep performs one pass over a single priority level (spec §4.2 steps
// 1–2): snapshot every currently-readable entry, then single-step each in
// FIFO order, releasing any that finalized.
func (sch *Schedule) sweep(q *CoroScheduleQueue) {
	for {
		if _, ok := q.queue.ReadAcquire(); !ok {
			break
		}
	}

	it := q.queue.IteratorInitRead()
	for {
		ref, ok := it.Next()
		if !ok {
			break
		}
		s := ref.Value()

		expired := s.timedWait && s.timeout.TimedOut().Get()
		sch.singleStep(s, q.priority)

		if expired && sch.metricsOn {
			q.metrics.timedOut.Add(1)
		}

		if s.status == StatusFinalize {
			if q.queue.ReadRelease(ref) {
				if sch.metricsOn {
					q.metrics.finalized.Add(1)
				}
			} else {
				logReleaseMismatch(q.priority)
			}
		}
	}
}

// singleStep implements spec §4.2.1 for a single CoroState. It is also
// used, recursively, to drive an off-schedule sub-coroutine forward on
// every visit to its parent (WAIT_SUBCORO).
func (sch *Schedule) singleStep(s *CoroState, priority int) {
	if s.timedWait && s.timeout.TimedOut().Get() {
		// Expiry takes priority over all wait kinds (spec §4.2.1): a
		// timed wait that expires is always resumable, regardless of
		// whether the primary condition became true at the same time.
		s.advance(priority)
		return
	}

	switch s.status {
	case StatusFinalize:
		return

	case StatusSuspended:
		s.advance(priority)

	case StatusWaitTimed:
		// Only the expiry path above resumes a pure timed wait.
		return

	case StatusWaitCondition:
		if s.waitCond.Get() {
			s.advance(priority)
		}

	case StatusWaitResource:
		result := s.waitRes.resource.Acquire(s.waitRes.owner)
		if result != Failed {
			s.waitRes.retval = result
			s.advance(priority)
		}

	case StatusWaitSubCoro:
		if s.waitSub.status == StatusFinalize {
			s.advance(priority)
		} else {
			sch.singleStep(s.waitSub, priority)
		}
	}
}
