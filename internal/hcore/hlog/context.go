package hlog

import (
	"context"
	"log/slog"
)

type loggerCtxKey struct{}

var nop = slog.New(slog.DiscardHandler)

// From returns the logger carried by ctx. Without one, logs are discarded:
// library code such as a lock registry never writes unless asked to.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}

	return nop
}

func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// ContextWith scopes the logger of ctx with args, so that everything logged
// below, down to the lockers waiting on behalf of a worker, carries them.
func ContextWith(ctx context.Context, args ...any) (context.Context, *slog.Logger) {
	l := From(ctx).With(args...)

	return ContextWithLogger(ctx, l), l
}
