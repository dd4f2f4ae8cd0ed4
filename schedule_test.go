package corosched

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_EnqueueRejectsOutOfRangePriority(t *testing.T) {
	sch := New(2)
	assert.Panics(t, func() { sch.Enqueue(2, func(s *CoroState) {}, nil) })
	assert.Panics(t, func() { sch.Enqueue(-1, func(s *CoroState) {}, nil) })
}

func TestSchedule_EnqueueRejectsWhenQueueFull(t *testing.T) {
	sch := New(1, WithQueueCapacity(1))

	_, err := sch.Enqueue(0, func(s *CoroState) { s.Yield() }, nil)
	require.NoError(t, err)

	_, err = sch.Enqueue(0, func(s *CoroState) { s.Yield() }, nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestSchedule_MetricsTrackEnqueuedAndFinalized(t *testing.T) {
	sch := New(1, WithMetrics(true))

	_, err := sch.Enqueue(0, func(s *CoroState) {}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = sch.Run(ctx)

	snap := sch.Metrics().Levels[0]
	assert.EqualValues(t, 1, snap.Enqueued)
	assert.EqualValues(t, 1, snap.Finalized)
}

func TestSchedule_RunRejectsReentrantInvocation(t *testing.T) {
	sch := New(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- sch.Run(ctx)
	}()
	<-started

	// give the main loop a moment to reach StateRunning
	require.Eventually(t, func() bool {
		return sch.state.Load() == StateRunning
	}, time.Second, time.Millisecond)

	err := sch.Run(context.Background())
	assert.ErrorIs(t, err, ErrScheduleRunning)

	cancel()
	<-done
}

func TestSchedule_RunReturnsContextError(t *testing.T) {
	sch := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sch.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedule_YieldRoundRobinWithinLevel(t *testing.T) {
	sch := New(1, WithQueueCapacity(4))

	var trace []string
	spawn := func(name string) {
		sch.Enqueue(0, func(s *CoroState) {
			for i := 0; i < 3; i++ {
				trace = append(trace, name)
				s.Yield()
			}
			trace = append(trace, name+"_end")
		}, nil)
	}
	spawn("A")
	spawn("B")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = sch.Run(ctx)

	expect := []string{"A", "B", "A", "B", "A", "B", "A_end", "B_end"}
	assert.Equal(t, expect, trace)
}

func TestSchedule_HigherPriorityStepsFirstEachPass(t *testing.T) {
	// Each pass visits level 0 before level 1, but a pass only takes one
	// step per coroutine (the snapshot is per-level, not run-to-finalize):
	// a high-priority coroutine that yields mid-pass lets a low-priority
	// one run during the same pass, and only resumes on the next one.
	sch := New(2, WithQueueCapacity(2))

	var trace []string
	sch.Enqueue(0, func(s *CoroState) {
		trace = append(trace, "high1")
		s.Yield()
		trace = append(trace, "high2")
	}, nil)
	sch.Enqueue(1, func(s *CoroState) {
		trace = append(trace, "low")
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = sch.Run(ctx)

	require.Len(t, trace, 3)
	assert.Equal(t, []string{"high1", "low", "high2"}, trace)
}

func TestSchedule_ConditionWaitResumesExactlyOnce(t *testing.T) {
	sch := New(1)
	var cond Condition
	var resumes int

	sch.Enqueue(0, func(s *CoroState) {
		s.AwaitCondition(&cond)
		resumes++
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cond.Set()
	}()

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_ = sch.Run(ctx)

	assert.Equal(t, 1, resumes)
}

func TestSchedule_SubCoroDrivenByParentSteppingOnly(t *testing.T) {
	sch := New(1)

	sub := NewCoroState(func(s *CoroState) {
		s.Yield()
	}, nil, nil)

	var parentDone bool
	sch.Enqueue(0, func(s *CoroState) {
		s.AwaitSubCoro(sub)
		parentDone = true
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = sch.Run(ctx)

	assert.Equal(t, StatusFinalize, sub.Status())
	assert.True(t, parentDone)
}
