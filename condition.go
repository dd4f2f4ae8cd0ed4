package corosched

import "sync/atomic"

// Condition is a single-bit atomic flag, set and cleared by any number of
// concurrent writers (including interrupt service routines) and observed by
// any number of concurrent readers. All operations are sequentially
// consistent with respect to other Condition operations and to the
// Resource/queue operations the scheduler observes (spec §3 "Condition").
//
// Once set, a Condition remains set until explicitly cleared: there are no
// spurious transitions.
//
// The zero value is a cleared Condition, ready to use.
type Condition struct {
	flag atomic.Bool
}

// Get atomically reads the condition.
func (c *Condition) Get() bool {
	return c.flag.Load()
}

// Set atomically sets the condition. Idempotent.
func (c *Condition) Set() {
	c.flag.Store(true)
}

// Clear atomically clears the condition. Idempotent.
func (c *Condition) Clear() {
	c.flag.Store(false)
}
