package logger

import (
	"context"

	"go.uber.org/zap"
)

type loggerContextKey struct{}

func NewLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// WithLogger returns a context carrying a request-scoped logger.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext returns the request-scoped logger, or a nop logger
// when none was installed (background work, tests).
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
