package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go-payroll/internal/config"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer recalculates employee salaries on template changes until
// SIGINT/SIGTERM.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	// Redis backs the component catalog cache used by the allocation.
	in, err := Connect(cfg, logger, true)
	if err != nil {
		return err
	}
	defer in.Close()

	svc := newServices(in)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.SalaryTemplateChangedTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeSalaryTemplateChanged(ctx, reader, svc.employeeSalary, logger)

	logger.Info("consumer shut down")
	return nil
}
