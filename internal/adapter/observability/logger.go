package observability

import (
	"context"

	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
	"github.com/bkyoung/inspection-sync/internal/usecase/reconcile"
)

// SyncLogger adapts rest.Logger to the reconcile and events Logger ports.
// The reconciler and event listeners share the same structured logging
// infrastructure as the GitHub API client.
type SyncLogger struct {
	logger rest.Logger
}

// NewSyncLogger creates a new sync logger adapter.
func NewSyncLogger(logger rest.Logger) reconcile.Logger {
	return &SyncLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *SyncLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *SyncLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
