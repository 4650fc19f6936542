package hlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDiscardsByDefault(t *testing.T) {
	l := From(context.Background())

	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestContextWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTextLogger(&buf, slog.LevelDebug, true))

	ctx, logger := ContextWith(ctx, "worker", "w1")
	logger.Info("started")
	From(ctx).Debug("waiting", "lock", "a")

	assert.Equal(t, "INFO started worker=w1\nDEBUG waiting worker=w1 lock=a\n", buf.String())
}
