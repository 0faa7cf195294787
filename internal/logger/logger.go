// Package logger carries a zap logger through a context.Context so that
// deeply nested code can log without threading a *zap.Logger parameter
// everywhere.
package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// L returns the logger stored in ctx, or the process-global logger if none
// was stored.
func L(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
