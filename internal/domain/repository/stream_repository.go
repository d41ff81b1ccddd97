package repository

import (
	"context"

	"github.com/geocoding-microservice/internal/domain"
)

// StreamRepository handles the Redis Streams transport used by the batch
// geocoding worker.
type StreamRepository interface {
	// CreateConsumerGroup creates a consumer group for the stream,
	// creating the stream itself if necessary.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream reads messages from the stream via the consumer group
	// until the context is cancelled.
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message.
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream publishes a JSON-encoded payload to the stream.
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
