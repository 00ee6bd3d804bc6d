package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-payroll/internal/events"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// SalaryRecalculator is implemented by employeesalary.Service.
type SalaryRecalculator interface {
	RecalculateByTemplate(ctx context.Context, companyID, templateID string) (int, error)
}

var errMalformedEvent = errors.New("malformed salary template event")

// ConsumeSalaryTemplateChanged recalculates the salary snapshots of every
// employee on a template after it changed. Malformed messages are committed
// and skipped; a failed recalculation leaves the offset uncommitted.
func ConsumeSalaryTemplateChanged(
	ctx context.Context,
	reader MessageReader,
	recalculator SalaryRecalculator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.salary_template_changed")
	log.Info("salary template consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("salary template consumer stopped")
				return
			}
			log.Error("fetch salary template message failed", zap.Error(err))
			continue
		}

		if err := handleTemplateChanged(ctx, msg, recalculator, log); err != nil && !errors.Is(err, errMalformedEvent) {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit salary template message failed", zap.Error(err))
		}
	}
}

func handleTemplateChanged(
	ctx context.Context,
	msg kafkago.Message,
	recalculator SalaryRecalculator,
	log *zap.Logger,
) error {
	var event events.SalaryTemplateChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode salary template event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		return errMalformedEvent
	}
	if event.TemplateID == "" || event.CompanyID == "" {
		log.Error("salary template event missing ids", zap.Int64("offset", msg.Offset))
		return errMalformedEvent
	}

	log = log.With(
		zap.String("template_id", event.TemplateID),
		zap.String("company_id", event.CompanyID),
		zap.String("action", event.Action),
	)
	if rid := headerValue(msg, "request_id"); rid != "" {
		ctx = contextutil.WithRequestID(ctx, rid)
		log = log.With(zap.String("request_id", rid))
	}
	ctx = contextutil.WithLogger(ctx, log)

	// A deleted template has no assignments left to recalculate.
	if event.Action == events.SalaryTemplateDeleted {
		log.Debug("skipping deleted salary template")
		return nil
	}

	updated, err := recalculator.RecalculateByTemplate(ctx, event.CompanyID, event.TemplateID)
	if err != nil {
		log.Error("recalculate employee salaries failed", zap.Error(err))
		return err
	}

	log.Info("employee salaries recalculated", zap.Int("updated", updated))
	return nil
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
