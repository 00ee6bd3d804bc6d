package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	messages  []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.messages) == 0 {
		f.cancel()
		return kafkago.Message{}, context.Canceled
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

type fakeRecalculator struct {
	recalculateFn func(ctx context.Context, companyID, templateID string) (int, error)
	calls         []string
}

func (f *fakeRecalculator) RecalculateByTemplate(ctx context.Context, companyID, templateID string) (int, error) {
	f.calls = append(f.calls, templateID)
	if f.recalculateFn != nil {
		return f.recalculateFn(ctx, companyID, templateID)
	}
	return 1, nil
}

func templateMessage(t *testing.T, offset int64, templateID, action string) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(events.SalaryTemplateChangedEvent{
		EventType:  events.SalaryTemplateChangedEventType,
		TemplateID: templateID,
		CompanyID:  "company-1",
		Action:     action,
		OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: payload}
}

func TestConsumeSalaryTemplateChanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	good := templateMessage(t, 1, "tpl-1", events.SalaryTemplateUpdated)
	malformed := kafkago.Message{Offset: 2, Value: []byte("{not json")}
	failing := templateMessage(t, 3, "tpl-fail", events.SalaryTemplateUpdated)
	deleted := templateMessage(t, 4, "tpl-gone", events.SalaryTemplateDeleted)

	reader := &fakeReader{messages: []kafkago.Message{good, malformed, failing, deleted}, cancel: cancel}
	recalc := &fakeRecalculator{recalculateFn: func(ctx context.Context, companyID, templateID string) (int, error) {
		if templateID == "tpl-fail" {
			return 0, errors.New("db down")
		}
		return 3, nil
	}}

	ConsumeSalaryTemplateChanged(ctx, reader, recalc, zap.NewNop())

	assert.Equal(t, []string{"tpl-1", "tpl-fail"}, recalc.calls)

	var offsets []int64
	for _, m := range reader.committed {
		offsets = append(offsets, m.Offset)
	}
	assert.Equal(t, []int64{1, 2, 4}, offsets)
}

func TestHandleTemplateChanged(t *testing.T) {
	log := zap.NewNop()

	t.Run("missing ids is malformed", func(t *testing.T) {
		msg := kafkago.Message{Value: []byte(`{"template_id":"","company_id":"c"}`)}
		err := handleTemplateChanged(context.Background(), msg, &fakeRecalculator{}, log)
		assert.ErrorIs(t, err, errMalformedEvent)
	})

	t.Run("request id header reaches recalculation", func(t *testing.T) {
		msg := templateMessage(t, 1, "tpl-1", events.SalaryTemplateCreated)
		msg.Headers = []kafkago.Header{{Key: "request_id", Value: []byte("req-42")}}

		var gotRequestID string
		recalc := &fakeRecalculator{recalculateFn: func(ctx context.Context, companyID, templateID string) (int, error) {
			gotRequestID = contextutil.GetRequestID(ctx)
			return 0, nil
		}}

		require.NoError(t, handleTemplateChanged(context.Background(), msg, recalc, log))
		assert.Equal(t, "req-42", gotRequestID)
	})
}
