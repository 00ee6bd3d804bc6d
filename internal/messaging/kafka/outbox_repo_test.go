package kafka_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-payroll/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            "9b1f1a8e-8f44-4c55-9a38-0d3f4b8f7c11",
		RequestID:     "req-1",
		AggregateType: "salary_template",
		AggregateID:   "tpl-1",
		EventType:     "salary_template.changed",
		Topic:         "hr.payroll.salary_template.changed.v1",
		Payload:       []byte(`{"template_id":"tpl-1"}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *kafka.OutboxEvent)
		wantErr bool
	}{
		{name: "valid", mutate: func(e *kafka.OutboxEvent) {}},
		{name: "missing id", mutate: func(e *kafka.OutboxEvent) { e.ID = "" }, wantErr: true},
		{name: "missing aggregate id", mutate: func(e *kafka.OutboxEvent) { e.AggregateID = "" }, wantErr: true},
		{name: "missing topic", mutate: func(e *kafka.OutboxEvent) { e.Topic = "" }, wantErr: true},
		{name: "empty payload", mutate: func(e *kafka.OutboxEvent) { e.Payload = nil }, wantErr: true},
		{name: "unknown status", mutate: func(e *kafka.OutboxEvent) { e.Status = "queued" }, wantErr: true},
		{name: "dead status", mutate: func(e *kafka.OutboxEvent) { e.Status = kafka.OutboxStatusDead }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			err := kafka.ValidateOutboxEvent(e)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 15*time.Second, kafka.RetryBackoff(0))
	assert.Equal(t, 15*time.Second, kafka.RetryBackoff(1))
	assert.Equal(t, 30*time.Second, kafka.RetryBackoff(2))
	assert.Equal(t, 2*time.Minute, kafka.RetryBackoff(4))
	assert.Equal(t, 10*time.Minute, kafka.RetryBackoff(7))
	assert.Equal(t, 10*time.Minute, kafka.RetryBackoff(50))
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	e := validEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(e.ID, e.RequestID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, e.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateInvalidSkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := validEvent()
	e.Topic = ""

	err = kafka.NewOutboxRepository(db).Create(context.Background(), e)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), validEvent()))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	due := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).
		AddRow("evt-1", "req-1", "salary_template", "tpl-1", "salary_template.changed",
			"hr.payroll.salary_template.changed.v1", []byte(`{}`), kafka.OutboxStatusPending, 0, due).
		AddRow("evt-2", "", "salary_template", "tpl-2", "salary_template.changed",
			"hr.payroll.salary_template.changed.v1", []byte(`{}`), kafka.OutboxStatusFailed, 3, due)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(rows)

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "tpl-2", events[1].AggregateID)
	assert.Equal(t, 3, events[1].RetryCount)
	assert.Equal(t, due, events[1].NextRetryAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPendingQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WillReturnError(errors.New("db down"))

	_, err = kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)
	assert.EqualError(t, err, "db down")
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("evt-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kafka.NewOutboxRepository(db).MarkSent(context.Background(), "evt-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	tests := []struct {
		name        string
		retryCount  int
		wantStatus  string
		wantBackoff int64
	}{
		{name: "first failure schedules retry", retryCount: 0, wantStatus: kafka.OutboxStatusFailed, wantBackoff: 15},
		{name: "third failure doubles", retryCount: 2, wantStatus: kafka.OutboxStatusFailed, wantBackoff: 60},
		{name: "last attempt parks event", retryCount: kafka.MaxOutboxAttempts - 1, wantStatus: kafka.OutboxStatusDead, wantBackoff: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			e := validEvent()
			e.RetryCount = tt.retryCount

			mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
				WithArgs(e.ID, tt.wantStatus, tt.retryCount+1, "broker unavailable", tt.wantBackoff).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(context.Background(), e, "broker unavailable"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
