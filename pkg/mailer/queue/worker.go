package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

// deliverArgs is the River job payload for one message.
type deliverArgs struct {
	Draft     mailer.Draft `json:"draft"`
	UniqueKey string       `json:"unique_key,omitempty" river:"unique"`
}

func (deliverArgs) Kind() string {
	return "mailkit:deliver"
}

type deliverWorker struct {
	river.WorkerDefaults[deliverArgs]
	mailer *mailer.Mailer
	log    DeliveryLog
	logger *slog.Logger
}

// Work sends the draft. Render failures cancel the job; transport failures
// are retried by River.
func (w *deliverWorker) Work(ctx context.Context, job *river.Job[deliverArgs]) error {
	result, err := w.mailer.SendDraft(ctx, job.Args.Draft)
	if err != nil {
		w.logger.ErrorContext(ctx, "queued mail delivery failed",
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.Any("error", err),
		)
		if errors.Is(err, mailer.ErrRenderFailed) || errors.Is(err, mailer.ErrNoRenderer) {
			return river.JobCancel(err)
		}
		return err
	}

	if w.log != nil {
		d := newDelivery(job.ID, job.Args.Draft, result)
		if err := w.log.Record(ctx, d); err != nil {
			// The message is out; failing the job would send it again.
			w.logger.WarnContext(ctx, "failed to record delivery",
				slog.Int64("job_id", job.ID),
				slog.Any("error", err),
			)
		}
	}

	w.logger.DebugContext(ctx, "queued mail delivered",
		slog.Int64("job_id", job.ID),
		slog.String("message_id", result.MessageID),
	)
	return nil
}

// pruneArgs is the periodic delivery log cleanup job.
type pruneArgs struct{}

func (pruneArgs) Kind() string {
	return "mailkit:prune_deliveries"
}

type pruneWorker struct {
	river.WorkerDefaults[pruneArgs]
	log    DeliveryLog
	keep   time.Duration
	logger *slog.Logger
}

func (w *pruneWorker) Work(ctx context.Context, _ *river.Job[pruneArgs]) error {
	n, err := w.log.Prune(ctx, time.Now().Add(-w.keep))
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "delivery log pruned", slog.Int64("deleted", n))
	return nil
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
