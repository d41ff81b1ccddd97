package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/domain"
	"github.com/geocoding-microservice/internal/domain/repository"
	apperrors "github.com/geocoding-microservice/internal/pkg/errors"
	"github.com/geocoding-microservice/internal/usecase"
	"github.com/geocoding-microservice/internal/worker"
)

// retryDelay is the pause between worker-level retry attempts.
const retryDelay = 500 * time.Millisecond

// BatchGeocodeWorker consumes lookup requests from the request stream,
// resolves them through the geocode use case and publishes the outcome
// to the result stream.
type BatchGeocodeWorker struct {
	*worker.BaseWorker
	streamRepo    repository.StreamRepository
	geocodeUC     *usecase.GeocodeUseCase
	requestStream string
	resultStream  string
	consumerName  string
	maxRetries    int
}

func NewBatchGeocodeWorker(
	streamRepo repository.StreamRepository,
	geocodeUC *usecase.GeocodeUseCase,
	requestStream string,
	resultStream string,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *BatchGeocodeWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &BatchGeocodeWorker{
		BaseWorker:    worker.NewBaseWorker("batch-geocode", consumerGroup, logger),
		streamRepo:    streamRepo,
		geocodeUC:     geocodeUC,
		requestStream: requestStream,
		resultStream:  resultStream,
		consumerName:  consumerName,
		maxRetries:    maxRetries,
	}
}

// Start runs the consume loop until the stop channel closes or ctx is
// cancelled.
func (w *BatchGeocodeWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting BatchGeocodeWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.String("request_stream", w.requestStream),
		zap.String("result_stream", w.resultStream))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.requestStream, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, w.requestStream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Message channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *BatchGeocodeWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	event, err := w.parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		// Ack malformed messages so they do not stay pending forever.
		_ = w.streamRepo.AckMessage(ctx, w.requestStream, w.ConsumerGroup(), msg.ID)
		return
	}

	resultEvent := w.resolve(ctx, event)

	if err := w.streamRepo.PublishToStream(ctx, w.resultStream, resultEvent); err != nil {
		logger.Error("Failed to publish result event",
			zap.String("request_id", event.RequestID.String()),
			zap.Error(err))
		// Leave the request unacked so another consumer can retry it.
		return
	}

	if err := w.streamRepo.AckMessage(ctx, w.requestStream, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	logger.Info("Request processed",
		zap.String("request_id", event.RequestID.String()),
		zap.String("kind", event.Kind),
		zap.Bool("resolved", resultEvent.Result != nil))
}

// resolve runs the lookup, retrying transient failures up to maxRetries
// with a pause between attempts. The provider client already backs off
// internally, so the pause here is short.
func (w *BatchGeocodeWorker) resolve(ctx context.Context, event *domain.GeocodeRequestEvent) *domain.GeocodeResultEvent {
	logger := w.Logger()

	var (
		result *domain.GeocodeResult
		err    error
	)

	attempts := w.maxRetries
	if attempts < 1 {
		attempts = 1
	}

loop:
	for attempt := 1; attempt <= attempts; attempt++ {
		if event.IsReverse() {
			result, err = w.geocodeUC.ReverseGeocode(ctx, *event.Lat, *event.Lon, false)
		} else {
			result, err = w.geocodeUC.Geocode(ctx, event.Address, false)
		}

		if err == nil || !isRetryable(err) || attempt == attempts {
			break
		}

		logger.Warn("Lookup failed, retrying",
			zap.String("request_id", event.RequestID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			break loop
		case <-time.After(retryDelay):
		}
	}

	resultEvent := &domain.GeocodeResultEvent{
		RequestID: event.RequestID,
		Result:    result,
	}
	if err != nil {
		resultEvent.Error = err.Error()
	}

	return resultEvent
}

// isRetryable reports whether another attempt could succeed. Validation
// failures and empty results never will.
func isRetryable(err error) bool {
	for _, sentinel := range []error{
		apperrors.ErrInvalidAddress,
		apperrors.ErrInvalidCoordinates,
		apperrors.ErrNoResults,
		apperrors.ErrProviderExhausted,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}

func (w *BatchGeocodeWorker) parseMessage(msg domain.StreamMessage) (*domain.GeocodeRequestEvent, error) {
	var event domain.GeocodeRequestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.Kind != domain.LookupForward && event.Kind != domain.LookupReverse {
		return nil, fmt.Errorf("unknown lookup kind %q", event.Kind)
	}
	if event.Kind == domain.LookupForward && event.Address == "" {
		return nil, fmt.Errorf("forward lookup without address")
	}
	if event.Kind == domain.LookupReverse && (event.Lat == nil || event.Lon == nil) {
		return nil, fmt.Errorf("reverse lookup without coordinates")
	}

	return &event, nil
}
