package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/entity"
	"github.com/reverio/leadgen/internal/infra/http/middleware"
	"github.com/reverio/leadgen/internal/usecase"
)

const metricsSource = "queue"

type RecordIngester interface {
	Ingest(ctx context.Context, record entity.SourceRecord) (usecase.IngestResult, error)
}

// Acknowledger is the part of amqp.Delivery the worker settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel *amqp.Channel
	Ingest  RecordIngester
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, ingest RecordIngester, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Ingest: ingest, Logger: logger}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(20, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("queue worker consuming", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("queue worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.Handle(ctx, d.Body, d.Redelivered, d)
		}
	}
}

// Handle settles one delivery: ack for stored or duplicate records, reject
// to the DLQ for malformed or invalid ones, and requeue a storage failure
// once before giving up on it.
func (w *Worker) Handle(ctx context.Context, body []byte, redelivered bool, ack Acknowledger) {
	var record entity.SourceRecord
	if err := json.Unmarshal(body, &record); err != nil {
		w.Logger.Warn("malformed lead record", zap.Error(err))
		middleware.RecordIngest(metricsSource, "rejected")
		w.settle(ack.Nack(false, false), "nack")
		return
	}

	result, err := w.Ingest.Ingest(ctx, record)
	switch {
	case err == nil:
		middleware.RecordIngest(metricsSource, result.String())
		w.Logger.Debug("lead record ingested",
			zap.String("company", record.CompanyName),
			zap.String("result", result.String()),
		)
		w.settle(ack.Ack(false), "ack")

	case errors.Is(err, entity.ErrInvalidRecord):
		middleware.RecordIngest(metricsSource, "rejected")
		w.Logger.Warn("invalid lead record", zap.String("company", record.CompanyName), zap.Error(err))
		w.settle(ack.Nack(false, false), "nack")

	default:
		w.Logger.Error("lead record not stored",
			zap.String("company", record.CompanyName),
			zap.Bool("redelivered", redelivered),
			zap.Error(err),
		)
		w.settle(ack.Nack(false, !redelivered), "nack")
	}
}

// settle logs a failed ack or nack; the broker redelivers the message once
// the channel closes.
func (w *Worker) settle(err error, op string) {
	if err != nil {
		w.Logger.Warn("delivery not settled", zap.String("op", op), zap.Error(err))
	}
}
