package corosched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResource_AcquireUnowned(t *testing.T) {
	var r Resource
	owner := &ResourceOwner{Priority: 1}

	result := r.Acquire(owner)
	assert.Equal(t, Success, result)
	assert.True(t, r.IsOwned(owner))
}

func TestResource_EqualPriorityNeverPreempts(t *testing.T) {
	var r Resource
	first := &ResourceOwner{Priority: 5}
	second := &ResourceOwner{Priority: 5}

	assert.Equal(t, Success, r.Acquire(first))
	assert.Equal(t, Failed, r.Acquire(second))
	assert.True(t, r.IsOwned(first))
}

func TestResource_HigherPriorityPreempts(t *testing.T) {
	var r Resource
	low := &ResourceOwner{Priority: 1}
	high := &ResourceOwner{Priority: 2}

	assert.Equal(t, Success, r.Acquire(low))
	assert.Equal(t, Preempted, r.Acquire(high))
	assert.True(t, r.IsOwned(high))
	assert.False(t, r.IsOwned(low))
	assert.EqualValues(t, 1, r.PreemptionCount())
}

func TestResource_LowerPriorityFailsAgainstOwner(t *testing.T) {
	var r Resource
	high := &ResourceOwner{Priority: 9}
	low := &ResourceOwner{Priority: 1}

	assert.Equal(t, Success, r.Acquire(high))
	assert.Equal(t, Failed, r.Acquire(low))
	assert.True(t, r.IsOwned(high))
}

func TestResource_ReleaseByNonOwnerIsNoop(t *testing.T) {
	var r Resource
	owner := &ResourceOwner{Priority: 1}
	stranger := &ResourceOwner{Priority: 9}

	r.Acquire(owner)
	r.Release(stranger)
	assert.True(t, r.IsOwned(owner))
}

func TestResource_ReleaseThenReacquire(t *testing.T) {
	var r Resource
	owner := &ResourceOwner{Priority: 1}

	r.Acquire(owner)
	r.Release(owner)
	assert.False(t, r.IsOwned(owner))

	other := &ResourceOwner{Priority: 1}
	assert.Equal(t, Success, r.Acquire(other))
}

func TestAcquireResult_String(t *testing.T) {
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Success", Success.String())
	assert.Equal(t, "Preempted", Preempted.String())
}
