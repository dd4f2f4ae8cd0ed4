package corosched

import "sync/atomic"

// ResourceOwner identifies a contender for a [Resource], by address, at a
// given priority (spec §3 "ResourceOwner"). The zero value is a valid owner
// at priority 0. Callers must ensure a ResourceOwner outlives every instant
// at which it is a possible value of any Resource cell it has been offered
// to — destroying it while recorded in a Resource cell is undefined
// behavior (spec §7).
type ResourceOwner struct {
	// Priority arbitrates contention for a Resource: higher values preempt
	// lower ones (never equal ones).
	Priority int32
}

// AcquireResult is the outcome of a Resource acquire attempt (spec §4.3 and
// §7: "Resource acquire failure" / "Resource preemption" are reported this
// way, not as errors).
type AcquireResult int

const (
	// Failed means the resource is held by an owner at priority >= the
	// acquirer's; the cell was not modified.
	Failed AcquireResult = iota
	// Success means the resource was unowned and is now held by the
	// acquirer.
	Success
	// Preempted means the resource was held by a strictly lower-priority
	// owner, which has now been displaced by the acquirer.
	Preempted
)

// String implements fmt.Stringer.
func (r AcquireResult) String() string {
	switch r {
	case Failed:
		return "Failed"
	case Success:
		return "Success"
	case Preempted:
		return "Preempted"
	default:
		return "Unknown"
	}
}

// Resource is an atomic cell holding at most one current [ResourceOwner]
// (spec §3 "Resource", §4.3). Acquire and Release are lock-free
// compare-and-swap loops; Acquire at a strictly higher priority than the
// current owner preempts it. The zero value is an unowned Resource, ready
// to use — grounded on eventloop/state.go's FastState CAS-loop style,
// specialized to a pointer payload instead of a uint64 enum.
type Resource struct {
	owner          atomic.Pointer[ResourceOwner]
	preemptedCount atomic.Uint64
}

// PreemptionCount returns the number of times Acquire has displaced a
// lower-priority owner from this resource. Additive instrumentation, not
// part of the acquire/release contract itself.
func (r *Resource) PreemptionCount() uint64 {
	return r.preemptedCount.Load()
}

// Acquire performs the CAS loop described in spec §4.3:
//
//   - If the resource is unowned, or the current owner's priority is
//     strictly less than owner.Priority, attempt to CAS the cell to owner.
//     On success, report Success if the prior value was nil, Preempted
//     otherwise. On CAS failure (a concurrent writer raced us), retry
//     against the freshly observed value.
//   - Otherwise (current owner's priority >= owner.Priority — including
//     the equal-priority case, which never preempts), return Failed
//     without modifying the cell.
//
// Acquire is wait-free under a bounded number of distinct contending
// priorities: each retry either terminates or observes a strictly higher
// priority than the previous attempt.
func (r *Resource) Acquire(owner *ResourceOwner) AcquireResult {
	for {
		current := r.owner.Load()
		if current != nil && current.Priority >= owner.Priority {
			return Failed
		}
		if r.owner.CompareAndSwap(current, owner) {
			if current == nil {
				return Success
			}
			r.preemptedCount.Add(1)
			logPreempted(owner.Priority, current.Priority)
			return Preempted
		}
		// A concurrent acquire or release changed the cell; retry.
	}
}

// Release atomically clears the resource cell, but only if it currently
// holds self. If some other owner (including nil, i.e. unowned) is
// observed, Release is a no-op — this is what makes it safe for a
// preempted owner to call Release without first checking IsOwned (spec
// §4.3, §7 "Resource preemption").
func (r *Resource) Release(self *ResourceOwner) {
	for {
		current := r.owner.Load()
		if current != self {
			return
		}
		if r.owner.CompareAndSwap(current, nil) {
			return
		}
	}
}

// IsOwned reports whether self is, at the instant of the call, the
// resource's owner. This is an unsynchronized equality check: the result
// can be invalidated by a higher-priority preemption immediately after
// observation. It is advisory only — do not use it to guard a subsequent
// Release (Release is already safe to call unconditionally) or to assume
// continued ownership (spec §4.3).
func (r *Resource) IsOwned(self *ResourceOwner) bool {
	return r.owner.Load() == self
}
