package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNew_WritesOutputAndRotatedFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.log")
	rotated := filepath.Join(dir, "rotated.log")

	l, err := New(Config{
		Level:       "info",
		Encoding:    "console",
		OutputPaths: []string{out},
		File:        &FileConfig{Filename: rotated, MaxSizeMB: 1},
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("converted", zap.String("system", "CGS"))
	require.NoError(t, l.Sync())

	console, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(console), "converted")
	assert.NotContains(t, string(console), "dropped")

	file, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Contains(t, string(file), `"message":"converted"`)
	assert.Contains(t, string(file), `"system":"CGS"`)
}

func TestWithContext(t *testing.T) {
	set(zap.NewNop())

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, SystemKey, "SI")
	assert.NotNil(t, WithContext(ctx))
	assert.NotNil(t, With(zap.String("k", "v")))
	assert.NoError(t, Sync())
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("bare")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	ctx = context.WithValue(ctx, SystemKey, "CGS")
	FromContext(ctx, base).Info("scoped")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"request_id": "req-7", "system": "CGS"}, entries[1].ContextMap())
}
