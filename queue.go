package corosched

import "sync/atomic"

// NestedQueue is the external collaborator contract §6.1 specifies: a
// bounded, single-consumer, nested-producer FIFO of fixed-size records.
// Producers may run at any priority, including interrupt service routines
// nested arbitrarily deep; the consumer is always the scheduler, on a
// single context. Only its contract is specified — [RingQueue] is this
// module's concrete implementation, grounded on eventloop/ingress.go's
// MicrotaskRing (sequence-numbered slots, Release/Acquire ordering,
// multi-producer/single-consumer), adapted to the read-acquire/iterate/
// read-release split this contract requires and to bounded, no-overflow
// behavior (see SPEC_FULL.md).
type NestedQueue[T any] interface {
	// Enqueue is the producer path: a nested, interrupt-safe insert,
	// first-come-first-served across non-nested producers. Returns the
	// inserted record's Ref, or ok=false if the queue is full.
	Enqueue(v T) (ref Ref[T], ok bool)

	// ReadAcquire moves one enqueued-but-not-yet-acquired record into the
	// readable band and returns a reference to it. Returns ok=false if
	// none is available. Called only by the consumer.
	ReadAcquire() (ref Ref[T], ok bool)

	// IteratorInitRead opens an iterator over the current readable band —
	// every record acquired via ReadAcquire that has not yet been released.
	IteratorInitRead() Iterator[T]

	// ReadRelease releases ref from the readable band. It succeeds only if
	// ref is the oldest unreleased readable record; otherwise it silently
	// no-ops, returning false.
	ReadRelease(ref Ref[T]) bool
}

// Ref is an opaque reference to a record previously returned by
// ReadAcquire or an iterator. It carries the record's monotonic index, so
// ReadRelease never accepts a stale Ref (from a slot that has wrapped around
// and been reused) in place of a live one. Value does not check this: on a
// stale Ref it returns whatever record now occupies the slot.
type Ref[T any] struct {
	queue *RingQueue[T]
	index uint64
}

// Value dereferences the ref, returning the record it refers to.
func (r Ref[T]) Value() T {
	return r.queue.valueAt(r.index)
}

// Iterator walks a NestedQueue's readable band in FIFO order.
type Iterator[T any] interface {
	// Next advances the iterator, returning the next record in FIFO order,
	// or ok=false once the band is exhausted.
	Next() (ref Ref[T], ok bool)
}

// ringSlot is one fixed-size record slot in a RingQueue.
type ringSlot[T any] struct {
	seq   atomic.Uint64 // 0 = empty; producer-visible value is index+1
	value T
}

// RingQueue is a bounded, lock-free, multi-producer/single-consumer
// implementation of [NestedQueue]. Capacity is fixed at construction and
// never grows: a full queue rejects new records rather than spilling to
// unbounded storage, matching this spec's "no dynamic allocation after
// construction" intent (spec §7, §3 "no destruction semantics specified;
// static allocation assumed").
//
// Three monotonic cursors describe the queue's state:
//
//	relHead <= readHead <= tail
//
// tail is the next slot producers will claim. readHead is the next slot
// the consumer will acquire into the readable band via ReadAcquire.
// relHead is the oldest acquired-but-not-yet-released record; ReadRelease
// only succeeds at relHead. Only the consumer ever advances readHead or
// relHead, so neither needs to be atomic for correctness against other
// consumer-side reads — but relHead is read by producers (to compute free
// capacity) and is therefore stored atomically.
type RingQueue[T any] struct {
	capacity uint64
	slots    []ringSlot[T]

	tail atomic.Uint64

	readHead uint64
	relHead  atomic.Uint64
}

// NewRingQueue constructs a RingQueue holding at most capacity records.
// Panics if capacity is zero.
func NewRingQueue[T any](capacity int) *RingQueue[T] {
	if capacity <= 0 {
		panic("corosched: RingQueue capacity must be positive")
	}
	return &RingQueue[T]{
		capacity: uint64(capacity),
		slots:    make([]ringSlot[T], capacity),
	}
}

func (q *RingQueue[T]) valueAt(index uint64) T {
	return q.slots[index%q.capacity].value
}

// Enqueue implements NestedQueue. Safe to call concurrently from any number
// of producer contexts, including nested interrupt handlers.
func (q *RingQueue[T]) Enqueue(v T) (Ref[T], bool) {
	for {
		tail := q.tail.Load()
		rel := q.relHead.Load()
		if tail-rel >= q.capacity {
			return Ref[T]{}, false
		}
		if q.tail.CompareAndSwap(tail, tail+1) {
			slot := &q.slots[tail%q.capacity]
			slot.value = v
			// Release barrier: the Store below publishes the value write
			// above to any consumer that observes this sequence number.
			slot.seq.Store(tail + 1)
			return Ref[T]{queue: q, index: tail}, true
		}
		// Lost the race for this slot; retry against the new tail.
	}
}

// ReadAcquire implements NestedQueue. Must only be called from the single
// consumer context.
func (q *RingQueue[T]) ReadAcquire() (Ref[T], bool) {
	idx := q.readHead
	if idx >= q.tail.Load() {
		return Ref[T]{}, false
	}
	slot := &q.slots[idx%q.capacity]
	// Acquire barrier: pairs with the Store in Enqueue, so the value write
	// is visible once this sequence number is observed.
	if slot.seq.Load() != idx+1 {
		// Producer has claimed this slot (advanced tail) but hasn't
		// published its sequence number yet. Treat as not-yet-available
		// rather than spinning, so a slow producer cannot stall the
		// scheduler's snapshot pass.
		return Ref[T]{}, false
	}
	q.readHead++
	return Ref[T]{queue: q, index: idx}, true
}

type ringIterator[T any] struct {
	queue *RingQueue[T]
	next  uint64
	limit uint64
}

// IteratorInitRead implements NestedQueue.
func (q *RingQueue[T]) IteratorInitRead() Iterator[T] {
	return &ringIterator[T]{
		queue: q,
		next:  q.relHead.Load(),
		limit: q.readHead,
	}
}

// Next implements Iterator.
func (it *ringIterator[T]) Next() (Ref[T], bool) {
	if it.next >= it.limit {
		return Ref[T]{}, false
	}
	idx := it.next
	it.next++
	return Ref[T]{queue: it.queue, index: idx}, true
}

// ReadRelease implements NestedQueue. Must only be called from the single
// consumer context.
func (q *RingQueue[T]) ReadRelease(ref Ref[T]) bool {
	if ref.queue != q {
		return false
	}
	rel := q.relHead.Load()
	if ref.index != rel {
		return false
	}
	var zero T
	q.slots[rel%q.capacity].value = zero
	q.slots[rel%q.capacity].seq.Store(0)
	q.relHead.Store(rel + 1)
	return true
}

// Len reports the number of records currently acquired-but-unreleased plus
// enqueued-but-unacquired. It is a snapshot, advisory under concurrent
// producers.
func (q *RingQueue[T]) Len() int {
	return int(q.tail.Load() - q.relHead.Load())
}
