// options.go - functional configuration for Schedule construction, styled
// after eventloop/options.go's LoopOption/resolveLoopOptions.
package corosched

// scheduleOptions holds resolved Schedule construction options.
type scheduleOptions struct {
	queueCapacity  int
	metricsEnabled bool
}

const defaultQueueCapacity = 64

// ScheduleOption configures a [Schedule] at construction time.
type ScheduleOption interface {
	applySchedule(*scheduleOptions)
}

type scheduleOptionFunc func(*scheduleOptions)

func (f scheduleOptionFunc) applySchedule(o *scheduleOptions) { f(o) }

// WithQueueCapacity sets the fixed capacity of every priority level's
// queue. Defaults to 64 records per level if unset.
func WithQueueCapacity(capacity int) ScheduleOption {
	return scheduleOptionFunc(func(o *scheduleOptions) {
		o.queueCapacity = capacity
	})
}

// WithMetrics enables atomic counter collection on the Schedule, readable
// via [Schedule.Metrics].
func WithMetrics(enabled bool) ScheduleOption {
	return scheduleOptionFunc(func(o *scheduleOptions) {
		o.metricsEnabled = enabled
	})
}

func resolveScheduleOptions(opts []ScheduleOption) *scheduleOptions {
	cfg := &scheduleOptions{
		queueCapacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applySchedule(cfg)
	}
	return cfg
}
