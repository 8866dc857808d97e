package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// StdoutAuditLogger writes audit entries through the global zap logger.
type StdoutAuditLogger struct {
	logger *zap.Logger
}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{logger: zap.L().Named("audit")}
}

func (l *StdoutAuditLogger) Log(_ context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
