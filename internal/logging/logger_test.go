package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	cfg, err := NewConfig(level, "json")
	require.NoError(t, err)
	cfg.Sampling.Enabled = false
	cfg.Caller = false

	var buf bytes.Buffer
	logger, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)
	return logger, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	return m
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("trace", "console")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)

	_, err = NewConfig("loud", "json")
	assert.Error(t, err)

	_, err = NewConfig("info", "xml")
	assert.Error(t, err)
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]zapcore.Level{
		"trace": TraceLevel,
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := LevelFromString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLogger_WritesContextFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithRequestID(ctx, "req-9")
	logger.Info(ctx, "chat answered", zap.Int("history", 2))

	line := decodeLine(t, buf)
	assert.Equal(t, "chat answered", line["msg"])
	assert.Equal(t, "sess-1", line["session.id"])
	assert.Equal(t, "req-9", line["request.id"])
	assert.Equal(t, float64(2), line["history"])
	assert.Equal(t, "docchat", line["service"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn")

	logger.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	logger.Trace(context.Background(), "also hidden")
	assert.Zero(t, buf.Len())

	logger.Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.Info(context.Background(), "calling provider", zap.String("api_key", "sk-live-123"), zap.String("model", "mistral"))
	line := decodeLine(t, buf)
	assert.Equal(t, "[REDACTED]", line["api_key"])
	assert.Equal(t, "mistral", line["model"])

	buf.Reset()
	logger.With(zap.String("Authorization", "Bearer abc")).Info(context.Background(), "with field")
	line = decodeLine(t, buf)
	assert.Equal(t, "[REDACTED]", line["Authorization"])
}

func TestLogger_Named(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.Named("indexing").Info(context.Background(), "named")
	line := decodeLine(t, buf)
	assert.Equal(t, "indexing", line["logger"])
}

func TestSampling_NeverDropsErrors(t *testing.T) {
	cfg, err := NewConfig("info", "json")
	require.NoError(t, err)
	cfg.Caller = false
	cfg.Sampling.Initial = 1
	cfg.Sampling.Thereafter = 1000

	var buf bytes.Buffer
	logger, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		logger.Error(context.Background(), "upstream failed")
	}
	assert.Equal(t, 5, bytes.Count(buf.Bytes(), []byte("upstream failed")))

	buf.Reset()
	for i := 0; i < 5; i++ {
		logger.Info(context.Background(), "noisy")
	}
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("noisy")))
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithSessionID(context.Background(), "abc")

	tl.Info(ctx, "index built", zap.Int("units", 12))
	tl.AssertLogged(t, zapcore.InfoLevel, "index built")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "index built")
	tl.AssertField(t, "index built", "session.id", "abc")
	tl.AssertField(t, "index built", "units", int64(12))

	tl.Reset()
	assert.Empty(t, tl.All())
}
