package corosched

// Status is a CoroState's position in the state machine of spec §4.4.
type Status int

const (
	// StatusSuspended means the coroutine is runnable on the scheduler's
	// next visit, with no condition attached (this is also the initial
	// status, modeling "resume_point = null").
	StatusSuspended Status = iota
	// StatusWaitTimed means the coroutine is waiting solely on its own
	// timeout; only timer expiry resumes it.
	StatusWaitTimed
	// StatusWaitCondition means the coroutine is waiting on an external
	// Condition (optionally with a timeout racing it).
	StatusWaitCondition
	// StatusWaitResource means the coroutine is waiting to acquire a
	// Resource (optionally with a timeout racing it).
	StatusWaitResource
	// StatusWaitSubCoro means the coroutine is waiting for another
	// CoroState, not necessarily scheduled in any queue, to FINALIZE.
	StatusWaitSubCoro
	// StatusFinalize is terminal: the coroutine body has returned and will
	// never be re-entered.
	StatusFinalize
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSuspended:
		return "SUSPENDED"
	case StatusWaitTimed:
		return "WAIT_TIMED"
	case StatusWaitCondition:
		return "WAIT_CONDITION"
	case StatusWaitResource:
		return "WAIT_RESOURCE"
	case StatusWaitSubCoro:
		return "WAIT_SUBCORO"
	case StatusFinalize:
		return "FINALIZE"
	default:
		return "UNKNOWN"
	}
}

// Func is a coroutine body: it runs until it either returns (finalizing) or
// calls exactly one of s's suspension primitives (spec §4.1). s.Vars is the
// coroutine's private frame — the only place state may be kept across a
// suspension point.
type Func func(s *CoroState)

// resourceWait holds the WAIT_RESOURCE variant of CoroState.wait (spec §3).
type resourceWait struct {
	resource *Resource
	owner    *ResourceOwner
	retval   AcquireResult
}

// CoroState is a coroutine's complete state record (spec §3): its resume
// point (modeled implicitly by the body's goroutine program counter — see
// below), its private frame, its body function, its status, and whichever
// wait variant its status selects.
//
// Resumption is implemented as a goroutine-per-coroutine continuation
// (grounded on the tcard/coro reference example, not the teacher): the
// body runs on its own goroutine, handed off to and from the scheduler
// through a pair of unbuffered channels, so that at any instant at most one
// of {scheduler, this body} is running (spec §5 invariant 2). This stands
// in for the reference implementation's computed-goto resumption trick
// (Design Notes (b): "a generator/continuation mechanism offered by the
// target language").
//
// Only the scheduler calls the unexported advance/step machinery; the
// coroutine body mutates status exclusively through the exported
// suspension primitives, per spec §3's invariant.
type CoroState struct {
	// Vars is the coroutine's private frame: the only state guaranteed to
	// survive a suspension point.
	Vars any

	fn     Func
	status Status

	timedWait bool
	timeout   Timer

	waitCond *Condition
	waitRes  resourceWait
	waitSub  *CoroState

	started   bool
	toBody    chan struct{}
	fromBody  chan struct{}
	lastPanic *PanicError
}

// NewCoroState constructs a CoroState ready for its first scheduler visit.
// timeout may be nil, in which case one is allocated lazily from
// [NewStdTimer] the first time a timed suspension primitive is used; supply
// one explicitly to use a hardware timer instead.
func NewCoroState(fn Func, vars any, timeout Timer) *CoroState {
	return &CoroState{
		Vars:     vars,
		fn:       fn,
		status:   StatusSuspended,
		timeout:  timeout,
		toBody:   make(chan struct{}),
		fromBody: make(chan struct{}),
	}
}

// Status returns the coroutine's current status. Safe to call from the
// scheduler context; the coroutine body itself never needs to.
func (s *CoroState) Status() Status {
	return s.status
}

// LastPanic returns the most recent panic recovered from this coroutine's
// body, or nil if it has never panicked. A panicking body is forced to
// FINALIZE (it is never re-entered), so a non-nil LastPanic always
// indicates why this CoroState stopped running.
func (s *CoroState) LastPanic() *PanicError {
	return s.lastPanic
}

func (s *CoroState) armTimer(ms int) {
	if s.timeout == nil {
		s.timeout = NewStdTimer()
	}
	s.timedWait = true
	s.timeout.Start(ms)
}

// suspend hands control back to the scheduler and blocks until the
// scheduler resumes this coroutine.
func (s *CoroState) suspend() {
	s.fromBody <- struct{}{}
	<-s.toBody
}

// Yield suspends unconditionally; the scheduler resumes it on its very
// next visit (spec §4.1 YIELD).
func (s *CoroState) Yield() {
	s.status = StatusSuspended
	s.timedWait = false
	s.suspend()
}

// AwaitTimed suspends until ms milliseconds elapse (spec §4.1
// AWAIT_TIMED).
func (s *CoroState) AwaitTimed(ms int) {
	s.status = StatusWaitTimed
	s.armTimer(ms)
	s.suspend()
}

// AwaitCondition suspends until cond is set, or — if ms is given — until
// ms milliseconds elapse, whichever comes first (spec §4.1 AWAIT(Condition,
// [ms?])). At most one ms value is honored; passing more than one panics.
func (s *CoroState) AwaitCondition(cond *Condition, ms ...int) {
	s.status = StatusWaitCondition
	s.waitCond = cond
	s.timedWait = false
	if len(ms) > 1 {
		panic("corosched: AwaitCondition takes at most one timeout")
	}
	if len(ms) == 1 {
		s.armTimer(ms[0])
	}
	s.suspend()
}

// AwaitResource suspends until resource is acquired on owner's behalf, or
// — if ms is given — until ms milliseconds elapse first (spec §4.1
// AWAIT(Resource, Owner, [ms?])). It is expression-like: the return value,
// valid once the coroutine resumes, is the acquire outcome.
//
// The scheduler only ever resumes a WAIT_RESOURCE coroutine either because
// its timeout expired, or because Acquire returned something other than
// Failed (spec §4.2.1) — a Failed acquire never resumes the wait. So a
// returned value of Failed unambiguously means this resumption was due to
// the timeout elapsing before the resource became available; Success or
// Preempted unambiguously means the resource was acquired. No separate
// "did I time out" flag is needed.
func (s *CoroState) AwaitResource(resource *Resource, owner *ResourceOwner, ms ...int) AcquireResult {
	s.status = StatusWaitResource
	s.waitRes = resourceWait{resource: resource, owner: owner}
	s.timedWait = false
	if len(ms) > 1 {
		panic("corosched: AwaitResource takes at most one timeout")
	}
	if len(ms) == 1 {
		s.armTimer(ms[0])
	}
	s.suspend()
	return s.waitRes.retval
}

// AwaitSubCoro suspends until sub reaches StatusFinalize (spec §4.1
// AWAIT(Sub, [ms?])). sub need not be enqueued in any Schedule: the
// scheduler drives it forward by single-stepping it in place on every
// visit to this coroutine (spec §4.2.1 WAIT_SUBCORO), so sub must outlive
// this await — it is referenced weakly, with no lifetime obligation placed
// on either side (spec §9 "Cyclic references").
func (s *CoroState) AwaitSubCoro(sub *CoroState, ms ...int) {
	s.status = StatusWaitSubCoro
	s.waitSub = sub
	s.timedWait = false
	if len(ms) > 1 {
		panic("corosched: AwaitSubCoro takes at most one timeout")
	}
	if len(ms) == 1 {
		s.armTimer(ms[0])
	}
	s.suspend()
}

// advance drives the body goroutine from wherever it last suspended (or
// from the entry point, if this is the first advance) until its next
// suspension point or its terminal return. Per spec §4.2.1 "Resume":
// status is set to StatusFinalize before the body runs, so a body that
// returns without suspending again leaves status terminal; a body that
// suspends overwrites status itself, via the primitive it called, before
// advance's caller observes the result.
func (s *CoroState) advance(priority int) {
	if s.timedWait {
		s.timeout.Cancel()
		s.timedWait = false
	}
	s.status = StatusFinalize

	if !s.started {
		s.started = true
		go s.run(priority)
	}

	s.toBody <- struct{}{}
	<-s.fromBody
}

func (s *CoroState) run(priority int) {
	<-s.toBody
	func() {
		defer func() {
			if r := recover(); r != nil {
				pe := PanicError{Value: r}
				s.lastPanic = &pe
				logPanic(priority, pe)
			}
		}()
		s.fn(s)
	}()
	s.status = StatusFinalize
	s.fromBody <- struct{}{}
}
