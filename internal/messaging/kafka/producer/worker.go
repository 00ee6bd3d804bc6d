package producer

import (
	"context"
	"time"

	"go-payroll/internal/config"
	"go-payroll/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafkago.Writer the worker needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Worker struct {
	repo         kafka.OutboxRepository
	writer       MessageWriter
	logger       *zap.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewWorker(repo kafka.OutboxRepository, writer MessageWriter, cfg config.OutboxConfig, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.L()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Worker{
		repo:         repo,
		writer:       writer,
		logger:       logger.Named("kafka.producer.worker"),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
	}
}

// Run polls the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				w.logger.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes one batch of due events and returns how many were
// sent. A publish failure is recorded on the event and does not stop the
// batch.
func (w *Worker) ProcessBatch(ctx context.Context) (int, error) {
	events, err := w.repo.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	w.logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		log := w.logger.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
			zap.String("request_id", event.RequestID),
		)

		if err := w.writer.WriteMessages(ctx, toMessage(event)); err != nil {
			log.Error("publish outbox event failed", zap.Int("retry_count", event.RetryCount), zap.Error(err))
			if markErr := w.repo.MarkFailed(ctx, event, err.Error()); markErr != nil {
				log.Error("mark outbox failed failed", zap.Error(markErr))
			}
			continue
		}

		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			// The message is out; a later retry will publish a duplicate,
			// which consumers tolerate.
			log.Error("mark outbox sent failed", zap.Error(err))
			continue
		}

		sent++
		log.Info("outbox event sent")
	}

	return sent, nil
}

func toMessage(event kafka.OutboxEvent) kafkago.Message {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		{Key: "outbox_id", Value: []byte(event.ID)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	return kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
}
