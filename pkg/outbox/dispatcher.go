package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"approvalflow/pkg/metrics"
	"approvalflow/pkg/mq"
)

// Dispatcher drains pending outbox events to the message broker.
type Dispatcher struct {
	repo       *Repository
	publisher  *mq.Publisher
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
}

func NewDispatcher(
	repo *Repository,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		maxRetries: 5,
		interval:   1 * time.Second,
		batchSize:  100,
	}
}

func (d *Dispatcher) WithMaxRetries(maxRetries int) *Dispatcher {
	d.maxRetries = maxRetries
	return d
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

func (d *Dispatcher) WithBatchSize(batchSize int) *Dispatcher {
	d.batchSize = batchSize
	return d
}

// Start runs the dispatch loop until the context is cancelled; call it in a
// goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting outbox dispatcher",
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.processPendingEvents(ctx)
		}
	}
}

func (d *Dispatcher) processPendingEvents(ctx context.Context) {
	events, err := d.repo.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("failed to fetch pending events", zap.Error(err))
		return
	}

	for _, e := range events {
		if err := d.publisher.Publish(e.RoutingKey, e.Payload); err != nil {
			d.logger.Warn("failed to publish event",
				zap.Int64("event_id", e.ID),
				zap.String("routing_key", e.RoutingKey),
				zap.Error(err),
			)
			metrics.OutboxPublished.WithLabelValues("error").Inc()
			if err := d.repo.MarkAsFailed(ctx, e.ID, d.maxRetries); err != nil {
				d.logger.Error("failed to mark event as failed", zap.Int64("event_id", e.ID), zap.Error(err))
			}
			continue
		}

		metrics.OutboxPublished.WithLabelValues("ok").Inc()
		if err := d.repo.MarkAsSent(ctx, e.ID); err != nil {
			d.logger.Error("failed to mark event as sent", zap.Int64("event_id", e.ID), zap.Error(err))
		}
	}
}
