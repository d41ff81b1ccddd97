package worker

import (
	"sync"

	"go.uber.org/zap"
)

// BaseWorker carries the lifecycle plumbing shared by all workers.
type BaseWorker struct {
	name          string
	logger        *zap.Logger
	stopChan      chan struct{}
	stopped       bool
	mu            sync.Mutex
	consumerGroup string
}

func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:          name,
		logger:        logger,
		stopChan:      make(chan struct{}),
		consumerGroup: consumerGroup,
	}
}

// Name returns the worker name.
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop closes the stop channel. Safe to call more than once.
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.logger.Info("Stopping worker", zap.String("name", w.name))
	close(w.stopChan)
	w.stopped = true

	return nil
}

// IsStopped reports whether Stop has been called.
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan returns the channel closed on Stop.
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// ConsumerGroup returns the stream consumer group name.
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// Logger returns the worker logger.
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}
