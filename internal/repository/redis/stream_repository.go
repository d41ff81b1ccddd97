package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
)

type streamRepository struct {
	client      *redis.Client
	logger      *zap.Logger
	readTimeout time.Duration
}

// NewStreamRepository returns the Redis Streams transport for batch
// geocoding requests.
func NewStreamRepository(client *redis.Client, readTimeout time.Duration, logger *zap.Logger) repository.StreamRepository {
	if readTimeout <= 0 {
		readTimeout = time.Second
	}
	return &streamRepository{
		client:      client,
		logger:      logger,
		readTimeout: readTimeout,
	}
}

func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// Start the group at "$" so only new requests are consumed; MKSTREAM
	// creates the stream when it does not exist yet.
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

func (r *streamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	msgChan := make(chan domain.StreamMessage, 10)

	go func() {
		defer close(msgChan)

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Stream consumer stopped",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				return
			default:
				// ">" reads only messages never delivered to this group
				result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    group,
					Consumer: consumer,
					Streams:  []string{stream, ">"},
					Count:    10,
					Block:    r.readTimeout,
				}).Result()

				if err != nil {
					if err == redis.Nil {
						continue // nothing new, keep waiting
					}
					if ctx.Err() != nil {
						return
					}
					r.logger.Error("Failed to read from stream",
						zap.String("stream", stream),
						zap.Error(err))
					time.Sleep(time.Second)
					continue
				}

				for _, str := range result {
					for _, msg := range str.Messages {
						data, ok := msg.Values["data"].(string)
						if !ok {
							r.logger.Warn("Message does not contain 'data' field",
								zap.String("message_id", msg.ID))
							continue
						}

						select {
						case msgChan <- domain.StreamMessage{ID: msg.ID, Data: data}:
						case <-ctx.Done():
							return
						}
					}
				}
			}
		}
	}()

	return msgChan, nil
}

func (r *streamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	if err := r.client.XAck(ctx, stream, group, messageID).Err(); err != nil {
		r.logger.Error("Failed to acknowledge message",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.String("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge message: %w", err)
	}
	return nil
}

func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(jsonData)},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", id))
	return nil
}
