package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/reverio/leadgen/internal/entity"
)

// Publisher is the slice of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RecordProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RecordProducer {
	return &RecordProducer{Ch: ch}
}

func (p *RecordProducer) PublishRecord(ctx context.Context, record entity.SourceRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    record.ExternalKey,
		},
	)
	if err != nil {
		return fmt.Errorf("publish record to RabbitMQ: %w", err)
	}
	return nil
}
