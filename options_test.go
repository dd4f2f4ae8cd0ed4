package corosched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveScheduleOptions_Defaults(t *testing.T) {
	cfg := resolveScheduleOptions(nil)
	assert.Equal(t, defaultQueueCapacity, cfg.queueCapacity)
	assert.False(t, cfg.metricsEnabled)
}

func TestResolveScheduleOptions_Overrides(t *testing.T) {
	cfg := resolveScheduleOptions([]ScheduleOption{
		WithQueueCapacity(8),
		WithMetrics(true),
	})
	assert.Equal(t, 8, cfg.queueCapacity)
	assert.True(t, cfg.metricsEnabled)
}

func TestResolveScheduleOptions_NilOptionIgnored(t *testing.T) {
	cfg := resolveScheduleOptions([]ScheduleOption{nil, WithQueueCapacity(4)})
	assert.Equal(t, 4, cfg.queueCapacity)
}
