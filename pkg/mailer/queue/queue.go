package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/mailkit/pkg/logger"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

const (
	// DefaultQueue is the River queue deliveries use unless InQueue is given.
	DefaultQueue = "mail"

	defaultMaxWorkers = 10
)

// Queue delivers messages asynchronously through River.
// Messages are stored as drafts; views are rendered by the worker right
// before delivery.
type Queue struct {
	pool    *pgxpool.Pool
	client  *river.Client[pgx.Tx]
	logger  *slog.Logger
	queues  map[string]struct{}
	mu      sync.Mutex
	started bool
}

// New creates a queue whose workers deliver through m.
// The River schema and the delivery log table must exist; see Migrate.
func New(pool *pgxpool.Pool, m *mailer.Mailer, opts ...Option) (*Queue, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if m == nil {
		return nil, ErrMailerRequired
	}

	cfg := &config{
		logger:     logger.NewNope(),
		queues:     make(map[string]int),
		maxWorkers: defaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.logSet {
		cfg.log = NewPostgresLog(pool)
	}

	queues := map[string]river.QueueConfig{
		DefaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	known := map[string]struct{}{DefaultQueue: {}}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
		known[name] = struct{}{}
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &deliverWorker{
		mailer: m,
		log:    cfg.log,
		logger: cfg.logger,
	})

	var periodicJobs []*river.PeriodicJob
	if cfg.retentionCron != "" {
		schedule, err := parseCronSchedule(cfg.retentionCron)
		if err != nil {
			return nil, errors.Join(ErrInvalidSchedule, err)
		}
		if cfg.log == nil {
			return nil, fmt.Errorf("%w: retention requires a delivery log", ErrInvalidSchedule)
		}
		river.AddWorker(workers, &pruneWorker{
			log:    cfg.log,
			keep:   cfg.retentionPeriod,
			logger: cfg.logger,
		})
		periodicJobs = append(periodicJobs, river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return pruneArgs{}, &river.InsertOpts{Queue: DefaultQueue}
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("queue: create client: %w", err)
	}

	return &Queue{
		pool:   pool,
		client: client,
		logger: cfg.logger,
		queues: known,
	}, nil
}

// Start begins working deliveries. Messages may be enqueued before Start.
// Workers keep running after ctx is canceled; use Stop to end them.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return ErrAlreadyStarted
	}
	if err := q.client.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("queue: start client: %w", err)
	}

	q.started = true
	q.logger.InfoContext(ctx, "mail queue started", slog.Int("queues", len(q.queues)))
	return nil
}

// Stop waits for in-flight deliveries to finish or ctx to expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return ErrNotStarted
	}
	if err := q.client.Stop(ctx); err != nil {
		return fmt.Errorf("queue: stop client: %w", err)
	}

	q.started = false
	q.logger.InfoContext(ctx, "mail queue stopped")
	return nil
}

// StartHook returns Start as a startup hook.
func (q *Queue) StartHook() func(context.Context) error {
	return q.Start
}

// ShutdownHook returns Stop as a shutdown hook.
func (q *Queue) ShutdownHook() func(context.Context) error {
	return q.Stop
}

// Enqueue stores msg for asynchronous delivery and returns the job ID.
// The message is snapshotted; later changes to msg are not delivered.
// A skipped duplicate (see Unique) returns the ID of the existing job.
func (q *Queue) Enqueue(ctx context.Context, msg *mailer.Message, opts ...EnqueueOption) (int64, error) {
	args, insertOpts, err := q.build(msg, opts...)
	if err != nil {
		return 0, err
	}

	res, err := q.client.Insert(ctx, args, insertOpts)
	if err != nil {
		return 0, errors.Join(ErrEnqueueFailed, err)
	}
	return res.Job.ID, nil
}

// EnqueueTx is like Enqueue but inserts within tx. The message is delivered
// only if tx commits.
func (q *Queue) EnqueueTx(ctx context.Context, tx pgx.Tx, msg *mailer.Message, opts ...EnqueueOption) (int64, error) {
	args, insertOpts, err := q.build(msg, opts...)
	if err != nil {
		return 0, err
	}

	res, err := q.client.InsertTx(ctx, tx, args, insertOpts)
	if err != nil {
		return 0, errors.Join(ErrEnqueueFailed, err)
	}
	return res.Job.ID, nil
}

// Healthcheck returns a readiness check that fails when the queue is not
// running or the database is unreachable.
func (q *Queue) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		q.mu.Lock()
		started := q.started
		q.mu.Unlock()

		if !started {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := q.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func (q *Queue) build(msg *mailer.Message, opts ...EnqueueOption) (deliverArgs, *river.InsertOpts, error) {
	if msg == nil {
		return deliverArgs{}, nil, fmt.Errorf("%w: nil message", ErrEnqueueFailed)
	}
	args, insertOpts := buildJobArgs(msg.Draft(), opts...)
	if _, ok := q.queues[insertOpts.Queue]; !ok {
		return deliverArgs{}, nil, fmt.Errorf("%w: unknown queue %q", ErrEnqueueFailed, insertOpts.Queue)
	}
	return args, insertOpts, nil
}

// buildJobArgs converts a draft and enqueue options into River arguments.
func buildJobArgs(draft mailer.Draft, opts ...EnqueueOption) (deliverArgs, *river.InsertOpts) {
	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	args := deliverArgs{Draft: draft}
	insertOpts := &river.InsertOpts{
		Queue:    DefaultQueue,
		Priority: jobPriority(draft),
		Tags:     cfg.tags,
	}
	if cfg.queue != "" {
		insertOpts.Queue = cfg.queue
	}
	if cfg.priority > 0 {
		insertOpts.Priority = cfg.priority
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.maxAttempts > 0 {
		insertOpts.MaxAttempts = cfg.maxAttempts
	}
	if cfg.uniqueKey != "" && cfg.uniqueFor > 0 {
		args.UniqueKey = cfg.uniqueKey
		insertOpts.UniqueOpts = river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: cfg.uniqueFor,
		}
	}
	return args, insertOpts
}

// jobPriority maps the message priority onto River's 1-4 scale.
func jobPriority(d mailer.Draft) int {
	if d.Options == nil {
		return 2
	}
	switch d.Options.Priority {
	case mailer.PriorityHigh:
		return 1
	case mailer.PriorityLow:
		return 3
	default:
		return 2
	}
}
