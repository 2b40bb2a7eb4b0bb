package notify

import (
	"context"
	"sync"

	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	"go.uber.org/zap"
)

const localBufferSize = 64

// LocalNotifier is the in-process fallback used when no broker is configured.
// Publishing never blocks; events beyond the buffer are dropped and logged.
type LocalNotifier struct {
	logger *zap.Logger

	mu      sync.Mutex
	changes chan budget.TransactionChange
	closed  bool
}

// NewLocalNotifier returns a notifier backed by a buffered channel.
func NewLocalNotifier(logger *zap.Logger) *LocalNotifier {
	return &LocalNotifier{
		logger:  logger,
		changes: make(chan budget.TransactionChange, localBufferSize),
	}
}

// PublishTransactionChange enqueues a change event.
func (notifier *LocalNotifier) PublishTransactionChange(_ context.Context, change budget.TransactionChange) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.closed {
		return nil
	}
	select {
	case notifier.changes <- change:
	default:
		notifier.logger.Warn("dropping transaction change, buffer full",
			zap.String("action", change.Action),
			zap.String("transaction_id", change.TransactionID))
	}
	return nil
}

// Changes exposes the event stream consumed by the engine watch loop.
func (notifier *LocalNotifier) Changes() <-chan budget.TransactionChange {
	return notifier.changes
}

// Close stops the stream. Subsequent publishes are no-ops.
func (notifier *LocalNotifier) Close() error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if !notifier.closed {
		notifier.closed = true
		close(notifier.changes)
	}
	return nil
}
