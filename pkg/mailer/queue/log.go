package queue

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

// Delivery is one accepted message in the delivery log.
type Delivery struct {
	SentAt     time.Time
	MessageID  string
	Subject    string
	Recipients []string
	JobID      int64
}

func newDelivery(jobID int64, d mailer.Draft, r *mailer.Result) Delivery {
	out := Delivery{JobID: jobID, SentAt: time.Now().UTC()}
	if r != nil {
		out.MessageID = r.MessageID
	}
	if d.Options != nil {
		out.Subject = d.Options.Subject
		for _, a := range d.Options.Recipients() {
			out.Recipients = append(out.Recipients, a.Address)
		}
	}
	return out
}

// DeliveryLog records delivered messages.
type DeliveryLog interface {
	Record(ctx context.Context, d Delivery) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// PostgresLog stores deliveries in the mail_deliveries table.
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog creates a delivery log backed by pool.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Record inserts d. A retried job that was already recorded is ignored.
func (l *PostgresLog) Record(ctx context.Context, d Delivery) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO mail_deliveries (job_id, message_id, subject, recipients, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id) DO NOTHING`,
		d.JobID, d.MessageID, d.Subject, d.Recipients, d.SentAt,
	)
	return err
}

// Prune deletes entries sent before the given time and reports how many
// were removed.
func (l *PostgresLog) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := l.pool.Exec(ctx, `DELETE FROM mail_deliveries WHERE sent_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Lookup returns the logged delivery for a job.
func (l *PostgresLog) Lookup(ctx context.Context, jobID int64) (Delivery, error) {
	d := Delivery{JobID: jobID}
	err := l.pool.QueryRow(ctx, `
		SELECT message_id, subject, recipients, sent_at
		FROM mail_deliveries WHERE job_id = $1`, jobID,
	).Scan(&d.MessageID, &d.Subject, &d.Recipients, &d.SentAt)
	return d, err
}
