package consumer

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrDiscard marks a message that can never be handled, such as a payload
// that fails to decode. It is committed so it does not block the partition.
var ErrDiscard = errors.New("discard message")

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type HandlerFunc func(ctx context.Context, msg kafkago.Message) error

// Run fetches messages until ctx is cancelled. A message is committed when
// handle succeeds or returns ErrDiscard. Any other error leaves it
// uncommitted for redelivery.
func Run(ctx context.Context, reader MessageReader, name string, handle HandlerFunc, logger *zap.Logger) {
	log := logger.Named("kafka.consumer." + name)
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		if err := handle(ctx, msg); err != nil {
			if !errors.Is(err, ErrDiscard) {
				log.Error("handle message failed",
					zap.String("topic", msg.Topic),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				continue
			}
			log.Warn("discarding message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
		}
	}
}
