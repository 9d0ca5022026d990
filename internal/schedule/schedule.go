// Package schedule sends configured notifications on cron schedules.
package schedule

import "context"

// Job defines a periodic task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "*/5 * * * *") or a
	// descriptor such as "@daily".
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}

// Recorder is notified after every run.
type Recorder interface {
	JobRan(name string, err error)
}
