package queue

import (
	"log/slog"
	"time"
)

type config struct {
	logger          *slog.Logger
	queues          map[string]int
	log             DeliveryLog
	logSet          bool
	retentionCron   string
	retentionPeriod time.Duration
	maxWorkers      int
}

// Option configures a Queue.
type Option func(*config)

// WithLogger sets the logger for the queue and its River client.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the number of concurrent deliveries on the default
// mail queue. Defaults to 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithQueue adds a named queue with its own worker count.
//
// Example:
//
//	queue.WithQueue("bulk", 2)
//	q.Enqueue(ctx, msg, queue.InQueue("bulk"))
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithDeliveryLog replaces the Postgres delivery log. Pass nil to disable
// delivery recording.
func WithDeliveryLog(l DeliveryLog) Option {
	return func(c *config) {
		c.log = l
		c.logSet = true
	}
}

// WithRetention prunes delivery log entries older than keep on the given
// cron schedule (5 fields: min hour day month weekday).
//
// Example:
//
//	queue.WithRetention("0 3 * * *", 30*24*time.Hour)
func WithRetention(schedule string, keep time.Duration) Option {
	return func(c *config) {
		c.retentionCron = schedule
		c.retentionPeriod = keep
	}
}

type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue selects a queue registered with WithQueue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays delivery until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn delays delivery by d.
//
// Example:
//
//	q.Enqueue(ctx, reminder, queue.ScheduledIn(24*time.Hour))
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts caps delivery retries. Defaults to River's default (25).
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Unique skips the message when another one with the same key was
// enqueued within d.
//
// Example:
//
//	// One password reset email per user per hour
//	q.Enqueue(ctx, msg, queue.Unique(user.ID, time.Hour))
func Unique(key string, d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
		c.uniqueFor = d
	}
}

// JobPriority overrides the River priority (1 is highest, 4 lowest).
// By default it follows the message priority.
func JobPriority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		if p >= 1 && p <= 4 {
			c.priority = p
		}
	}
}

// Tags adds River job tags.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}
