package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/pkg/metrics"
)

// Deduper claims a message id before delivery. Implemented by the Redis
// DedupChecker.
type Deduper interface {
	Claim(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

// MailWorker delivers EmailJobs consumed from the broker.
type MailWorker struct {
	sender ports.Notifier
	dedup  Deduper
	log    zerolog.Logger
}

// NewMailWorker returns a worker sending through sender. dedup may be nil.
func NewMailWorker(sender ports.Notifier, dedup Deduper, log zerolog.Logger) *MailWorker {
	return &MailWorker{sender: sender, dedup: dedup, log: log}
}

// Handle processes one payload. requeue tells the caller whether a failed
// message is worth redelivering.
func (w *MailWorker) Handle(ctx context.Context, body []byte) (requeue bool, err error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		metrics.NotificationsFailedTotal.WithLabelValues("decode").Inc()
		return false, fmt.Errorf("decode email job: %w", err)
	}
	if job.To == "" {
		metrics.NotificationsFailedTotal.WithLabelValues("decode").Inc()
		return false, fmt.Errorf("email job %s has no recipient", job.ID)
	}

	if w.dedup != nil && job.ID != "" {
		fresh, err := w.dedup.Claim(ctx, job.ID)
		if err != nil {
			w.log.Warn().Err(err).Str("job_id", job.ID).Msg("dedup unavailable, sending anyway")
		} else if !fresh {
			w.log.Info().Str("job_id", job.ID).Msg("duplicate email job skipped")
			return false, nil
		}
	}

	if err := w.sender.Send(ctx, job.To, job.Subject, job.Text); err != nil {
		metrics.NotificationsFailedTotal.WithLabelValues("deliver").Inc()
		if w.dedup != nil && job.ID != "" {
			if rerr := w.dedup.Release(ctx, job.ID); rerr != nil {
				w.log.Warn().Err(rerr).Str("job_id", job.ID).Msg("dedup release failed")
			}
		}
		return true, err
	}
	return false, nil
}

// Run consumes deliveries until ctx is cancelled or the channel closes.
func (w *MailWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			requeue, err := w.Handle(ctx, d.Body)
			if err != nil {
				w.log.Error().Err(err).Bool("requeue", requeue && !d.Redelivered).Msg("email job failed")
				// One retry: a message that already came back once is dropped.
				_ = d.Nack(false, requeue && !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
