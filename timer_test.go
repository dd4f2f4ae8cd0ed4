package corosched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStdTimer_FiresCondition(t *testing.T) {
	timer := NewStdTimer()
	assert.False(t, timer.TimedOut().Get())

	timer.Start(10)
	assert.Eventually(t, func() bool {
		return timer.TimedOut().Get()
	}, time.Second, time.Millisecond)
}

func TestStdTimer_CancelPreventsExpiry(t *testing.T) {
	timer := NewStdTimer()
	timer.Start(20)
	timer.Cancel()

	time.Sleep(40 * time.Millisecond)
	assert.False(t, timer.TimedOut().Get())
}

func TestStdTimer_RestartClearsPreviousCondition(t *testing.T) {
	timer := NewStdTimer()
	timer.Start(10)
	assert.Eventually(t, func() bool {
		return timer.TimedOut().Get()
	}, time.Second, time.Millisecond)

	timer.Start(10000)
	assert.False(t, timer.TimedOut().Get())
	timer.Cancel()
}

func TestStdTimer_CancelIsIdempotent(t *testing.T) {
	timer := NewStdTimer()
	timer.Cancel()
	timer.Cancel()
	timer.Start(10)
	timer.Cancel()
}
