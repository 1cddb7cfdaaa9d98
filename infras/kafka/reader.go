package kafka

import (
	"context"

	kafkaGo "github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafkaGo.Reader the consumer loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

var _ messageReader = (*kafkaGo.Reader)(nil)
