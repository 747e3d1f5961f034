package queue

import "errors"

var (
	// ErrPoolRequired is returned when New is called without a pool.
	ErrPoolRequired = errors.New("queue: pool is required")

	// ErrMailerRequired is returned when New is called without a mailer.
	ErrMailerRequired = errors.New("queue: mailer is required")

	// ErrAlreadyStarted is returned by Start on a running queue.
	ErrAlreadyStarted = errors.New("queue: already started")

	// ErrNotStarted is returned by Stop on a queue that is not running.
	ErrNotStarted = errors.New("queue: not started")

	// ErrEnqueueFailed wraps errors from inserting a delivery job.
	ErrEnqueueFailed = errors.New("queue: failed to enqueue message")

	// ErrHealthcheckFailed is returned when the queue health check fails.
	ErrHealthcheckFailed = errors.New("queue: healthcheck failed")

	// ErrInvalidSchedule is returned for an unparsable retention cron expression.
	ErrInvalidSchedule = errors.New("queue: invalid schedule")
)
