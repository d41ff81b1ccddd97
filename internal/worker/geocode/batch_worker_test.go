package geocode_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/domain"
	apperrors "github.com/geocoding-microservice/internal/pkg/errors"
	"github.com/geocoding-microservice/internal/repository/cache"
	"github.com/geocoding-microservice/internal/usecase"
	workergeocode "github.com/geocoding-microservice/internal/worker/geocode"
)

const (
	testRequestStream = "geocode:requests"
	testResultStream  = "geocode:results"
)

type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

type MockGeocoderRepository struct {
	mock.Mock
}

func (m *MockGeocoderRepository) Geocode(ctx context.Context, address string) ([]domain.GeocodeResult, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeocodeResult), args.Error(1)
}

func (m *MockGeocoderRepository) ReverseGeocode(ctx context.Context, lat, lon float64) ([]domain.GeocodeResult, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeocodeResult), args.Error(1)
}

func newTestWorker(t *testing.T, mockStream *MockStreamRepository, mockGeocoder *MockGeocoderRepository) *workergeocode.BatchGeocodeWorker {
	t.Helper()

	uc := usecase.NewGeocodeUseCase(
		mockGeocoder,
		cache.NewMemoryRepository(),
		domain.BaltimoreCity(""),
		zap.NewNop(),
		"geo",
		0,
	)

	return workergeocode.NewBatchGeocodeWorker(
		mockStream,
		uc,
		testRequestStream,
		testResultStream,
		"test-group",
		3,
		zap.NewNop(),
	)
}

func baltimoreResult() domain.GeocodeResult {
	return domain.GeocodeResult{
		Latitude:         39.3051,
		Longitude:        -76.6158,
		FormattedAddress: "1309 N Charles St, Baltimore, MD 21201",
		City:             "Baltimore",
		County:           "Baltimore city",
		State:            "MD",
		Zip:              "21201",
		Accuracy:         1,
		AccuracyType:     "rooftop",
		Source:           "City of Baltimore",
	}
}

func TestBatchGeocodeWorker_Name(t *testing.T) {
	worker := newTestWorker(t, &MockStreamRepository{}, &MockGeocoderRepository{})
	assert.Equal(t, "batch-geocode", worker.Name())
}

func TestBatchGeocodeWorker_StopIsIdempotent(t *testing.T) {
	worker := newTestWorker(t, &MockStreamRepository{}, &MockGeocoderRepository{})

	assert.NoError(t, worker.Stop())
	assert.NoError(t, worker.Stop())
}

func TestBatchGeocodeWorker_ContextCancellation(t *testing.T) {
	mockStream := &MockStreamRepository{}
	worker := newTestWorker(t, mockStream, &MockGeocoderRepository{})

	messages := make(chan domain.StreamMessage)

	mockStream.On("CreateConsumerGroup", mock.Anything, testRequestStream, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, testRequestStream, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	mockStream.AssertExpectations(t)
}

func TestBatchGeocodeWorker_ForwardRequest(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockGeocoder := &MockGeocoderRepository{}
	worker := newTestWorker(t, mockStream, mockGeocoder)

	requestID := uuid.New()
	event := &domain.GeocodeRequestEvent{
		RequestID: requestID,
		Kind:      domain.LookupForward,
		Address:   "1309 N Charles St Baltimore MD",
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-0", Data: string(payload)}

	mockStream.On("CreateConsumerGroup", mock.Anything, testRequestStream, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, testRequestStream, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	mockGeocoder.On("Geocode", mock.Anything, mock.AnythingOfType("string")).
		Return([]domain.GeocodeResult{baltimoreResult()}, nil)

	published := make(chan *domain.GeocodeResultEvent, 1)
	mockStream.On("PublishToStream", mock.Anything, testResultStream, mock.MatchedBy(func(ev *domain.GeocodeResultEvent) bool {
		return ev.RequestID == requestID
	})).Run(func(args mock.Arguments) {
		published <- args.Get(2).(*domain.GeocodeResultEvent)
	}).Return(nil)

	acked := make(chan string, 1)
	mockStream.On("AckMessage", mock.Anything, testRequestStream, "test-group", "1234567890-0").
		Run(func(args mock.Arguments) {
			acked <- args.String(3)
		}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	select {
	case ev := <-published:
		require.NotNil(t, ev.Result)
		assert.Empty(t, ev.Error)
		assert.Equal(t, "Baltimore city", ev.Result.County)
		assert.True(t, ev.Result.WithinCity)
	case <-time.After(2 * time.Second):
		t.Fatal("Result event was not published")
	}

	select {
	case id := <-acked:
		assert.Equal(t, "1234567890-0", id)
	case <-time.After(2 * time.Second):
		t.Fatal("Request message was not acked")
	}

	require.NoError(t, worker.Stop())
	<-done

	mockStream.AssertExpectations(t)
	mockGeocoder.AssertExpectations(t)
}

func TestBatchGeocodeWorker_ReverseRequestError(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockGeocoder := &MockGeocoderRepository{}
	worker := newTestWorker(t, mockStream, mockGeocoder)

	requestID := uuid.New()
	lat, lon := 39.2800, -76.5900
	event := &domain.GeocodeRequestEvent{
		RequestID: requestID,
		Kind:      domain.LookupReverse,
		Lat:       &lat,
		Lon:       &lon,
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-1", Data: string(payload)}

	mockStream.On("CreateConsumerGroup", mock.Anything, testRequestStream, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, testRequestStream, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	mockGeocoder.On("ReverseGeocode", mock.Anything, 39.28, -76.59).
		Return([]domain.GeocodeResult{}, nil)

	published := make(chan *domain.GeocodeResultEvent, 1)
	mockStream.On("PublishToStream", mock.Anything, testResultStream, mock.MatchedBy(func(ev *domain.GeocodeResultEvent) bool {
		return ev.RequestID == requestID
	})).Run(func(args mock.Arguments) {
		published <- args.Get(2).(*domain.GeocodeResultEvent)
	}).Return(nil)

	mockStream.On("AckMessage", mock.Anything, testRequestStream, "test-group", "1234567890-1").
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	select {
	case ev := <-published:
		assert.Nil(t, ev.Result)
		assert.NotEmpty(t, ev.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("Result event was not published")
	}

	require.NoError(t, worker.Stop())
	<-done

	mockStream.AssertExpectations(t)
	mockGeocoder.AssertExpectations(t)
}

func TestBatchGeocodeWorker_RetryStopsOnContextCancel(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockGeocoder := &MockGeocoderRepository{}
	worker := newTestWorker(t, mockStream, mockGeocoder)

	requestID := uuid.New()
	event := &domain.GeocodeRequestEvent{
		RequestID: requestID,
		Kind:      domain.LookupForward,
		Address:   "1309 N Charles St Baltimore MD",
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-3", Data: string(payload)}

	mockStream.On("CreateConsumerGroup", mock.Anything, testRequestStream, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, testRequestStream, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	// Transient failure on every attempt; the retry pause should be where
	// cancellation lands.
	mockGeocoder.On("Geocode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrProviderError)

	published := make(chan *domain.GeocodeResultEvent, 1)
	mockStream.On("PublishToStream", mock.Anything, testResultStream, mock.MatchedBy(func(ev *domain.GeocodeResultEvent) bool {
		return ev.RequestID == requestID
	})).Run(func(args mock.Arguments) {
		published <- args.Get(2).(*domain.GeocodeResultEvent)
	}).Return(nil)

	mockStream.On("AckMessage", mock.Anything, testRequestStream, "test-group", "1234567890-3").
		Return(nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	// Cancel while the worker sits in the pause before its second attempt.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case ev := <-published:
		assert.Nil(t, ev.Result)
		assert.NotEmpty(t, ev.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("Result event was not published after cancellation")
	}

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	// One lookup, not three: the remaining attempts were abandoned.
	mockGeocoder.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestBatchGeocodeWorker_MalformedMessageIsAcked(t *testing.T) {
	mockStream := &MockStreamRepository{}
	worker := newTestWorker(t, mockStream, &MockGeocoderRepository{})

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-2", Data: "{not json"}

	mockStream.On("CreateConsumerGroup", mock.Anything, testRequestStream, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, testRequestStream, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	acked := make(chan string, 1)
	mockStream.On("AckMessage", mock.Anything, testRequestStream, "test-group", "1234567890-2").
		Run(func(args mock.Arguments) {
			acked <- args.String(3)
		}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	select {
	case id := <-acked:
		assert.Equal(t, "1234567890-2", id)
	case <-time.After(2 * time.Second):
		t.Fatal("Malformed message was not acked")
	}

	require.NoError(t, worker.Stop())
	<-done

	mockStream.AssertExpectations(t)
}
