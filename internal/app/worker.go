package app

import (
	"context"
	"os/signal"
	"syscall"

	"go-payroll/internal/config"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker publishes outbox events to Kafka until SIGINT/SIGTERM.
func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	in, err := Connect(cfg, logger, false)
	if err != nil {
		return err
	}
	defer in.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := producer.NewWorker(kafka.NewOutboxRepository(in.SQLDB), kafkaWriter, cfg.Outbox, logger)
	worker.Run(ctx)

	logger.Info("worker shut down")
	return nil
}
