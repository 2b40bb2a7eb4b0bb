// Package oplog adapts structured logging to the budget engine's operation
// callback.
package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	"go.uber.org/zap"
)

// ZapLogger emits one structured log line per budget operation.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// LogOperation implements budget.OperationLogger.
func (adapter *ZapLogger) LogOperation(_ context.Context, entry budget.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if !entry.WalletID.IsZero() {
		fields = append(fields, zap.String("wallet_id", entry.WalletID.String()))
	}
	if !entry.PeerWalletID.IsZero() {
		fields = append(fields, zap.String("peer_wallet_id", entry.PeerWalletID.String()))
	}
	if !entry.Amount.IsZero() {
		fields = append(fields, zap.String("amount", entry.Amount.String()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		adapter.logger.Warn("budget operation failed", fields...)
		return
	}
	adapter.logger.Info("budget operation", fields...)
}
