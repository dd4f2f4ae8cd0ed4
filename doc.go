// Package corosched implements a cooperative, stackless-in-spirit,
// interrupt-safe coroutine runtime for bare-metal or RTOS-less embedded
// targets.
//
// A [Schedule] drives a fixed, priority-ordered set of coroutine queues to
// completion. Coroutine bodies suspend cooperatively via the methods on
// [CoroState]: Yield, AwaitTimed, AwaitCondition, AwaitResource, and
// AwaitSubCoro. Interrupt service routines (or any other concurrent
// producer) may enqueue new coroutines, set [Condition] flags, and call the
// [Resource] acquire/release API without coordinating with the scheduler
// goroutine.
//
// The runtime has no process-wide state: every [Schedule] is an
// independently constructed value, and the package itself holds only a
// package-level logger (see [SetLogger]), consistent with the rest of this
// module's ambient stack.
package corosched
