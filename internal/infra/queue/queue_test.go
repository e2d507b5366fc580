package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/usecase"
)

type capturePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *capturePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func TestPublishRecord(t *testing.T) {
	pub := &capturePublisher{}
	rec := entity.SourceRecord{ExternalKey: "556123-4567", CompanyName: "Bageriet i Lund AB", Phone: "0461234567", Source: "Excel: skane.xlsx"}

	require.NoError(t, NewProducer(pub).PublishRecord(context.Background(), rec))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "556123-4567", pub.msg.MessageId)

	var got entity.SourceRecord
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, rec, got)
}

func TestPublishRecordError(t *testing.T) {
	pub := &capturePublisher{err: amqp.ErrClosed}
	err := NewProducer(pub).PublishRecord(context.Background(), entity.SourceRecord{CompanyName: "X"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

// MockIngester
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) Ingest(ctx context.Context, record entity.SourceRecord) (usecase.IngestResult, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(usecase.IngestResult), args.Error(1)
}

type recordedAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *recordedAck) Ack(bool) error {
	a.acked = true
	return nil
}

func (a *recordedAck) Nack(_ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func TestWorkerHandle(t *testing.T) {
	valid := entity.SourceRecord{CompanyName: "Ett AB", Phone: "0811111111"}
	invalid := entity.SourceRecord{CompanyName: "Kort AB", Phone: "123"}
	failing := entity.SourceRecord{CompanyName: "Fel AB", Phone: "0822222222"}
	dup := entity.SourceRecord{CompanyName: "Dubblett AB", Phone: "0833333333"}

	ingest := new(MockIngester)
	ingest.On("Ingest", mock.Anything, valid).Return(usecase.IngestCreated, nil)
	ingest.On("Ingest", mock.Anything, dup).Return(usecase.IngestDuplicate, nil)
	ingest.On("Ingest", mock.Anything, invalid).Return(usecase.IngestRejected,
		&usecase.DomainError{Code: usecase.CodeInvalidRecord, Message: "invalid", Err: entity.ErrInvalidRecord})
	ingest.On("Ingest", mock.Anything, failing).Return(usecase.IngestRejected, errors.New("db down"))

	w := NewWorker(nil, ingest, nil)

	body := func(r entity.SourceRecord) []byte {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		return b
	}

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		want        recordedAck
	}{
		{"created", body(valid), false, recordedAck{acked: true}},
		{"duplicate", body(dup), false, recordedAck{acked: true}},
		{"invalid record", body(invalid), false, recordedAck{nacked: true}},
		{"malformed json", []byte("{not json"), false, recordedAck{nacked: true}},
		{"storage failure first time", body(failing), false, recordedAck{nacked: true, requeued: true}},
		{"storage failure redelivered", body(failing), true, recordedAck{nacked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordedAck{}
			w.Handle(context.Background(), tt.body, tt.redelivered, ack)
			assert.Equal(t, tt.want, *ack)
		})
	}
}

type closedAck struct{}

func (closedAck) Ack(bool) error        { return amqp.ErrClosed }
func (closedAck) Nack(bool, bool) error { return amqp.ErrClosed }

func TestWorkerLogsFailedSettle(t *testing.T) {
	valid := entity.SourceRecord{CompanyName: "Ett AB", Phone: "0811111111"}
	ingest := new(MockIngester)
	ingest.On("Ingest", mock.Anything, valid).Return(usecase.IngestCreated, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	w := NewWorker(nil, ingest, zap.New(core))

	b, err := json.Marshal(valid)
	require.NoError(t, err)
	w.Handle(context.Background(), b, false, closedAck{})
	w.Handle(context.Background(), []byte("{not json"), false, closedAck{})

	settles := logs.FilterMessage("delivery not settled").All()
	require.Len(t, settles, 2)
	assert.Equal(t, "ack", settles[0].ContextMap()["op"])
	assert.Equal(t, "nack", settles[1].ContextMap()["op"])
}
