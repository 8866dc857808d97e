package producer

import (
	"context"

	"go-payroll/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=publisher.go -destination=mock/publisher_mock.go -package=mock
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func toMessage(event kafka.OutboxEvent) kafkago.Message {
	headers := []kafkago.Header{
		{Key: "event_id", Value: []byte(event.ID)},
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
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

func publishEvent(ctx context.Context, writer MessageWriter, event kafka.OutboxEvent) error {
	return writer.WriteMessages(ctx, toMessage(event))
}
