package xlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xstable/lib/infra"
)

func newBufferedXLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	opts = append(opts, withXLoggerWriteSyncer(zapcore.AddSync(buf)))
	logger := NewXLogger(opts...)
	require.NotNil(t, logger)
	return logger, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	res := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		res = append(res, m)
	}
	return res
}

func TestGetLogLevelOrDefault(t *testing.T) {
	testcases := []struct {
		in       string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"  ", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"unknown", zapcore.DebugLevel},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, getLogLevelOrDefault(tc.in), tc.in)
	}
}

func TestXLogger_LevelAndFields(t *testing.T) {
	logger, buf := newBufferedXLogger(t,
		WithXLoggerLevel(LogLevelInfo),
		WithXLoggerEncoder(JSON),
		WithXLoggerTimeEncoder(nil),
		WithXLoggerLevelEncoder(zapcore.CapitalLevelEncoder),
	)
	logger.Debug("dropped")
	logger.Info("kept", zap.Int("n", 1))
	logger.Warn("warned")
	logger.Error(errors.New("boom"), "failed")
	require.NoError(t, logger.Sync())

	lines := decodeLines(t, buf)
	require.Len(t, lines, 3)
	require.Equal(t, "kept", lines[0]["msg"])
	require.Equal(t, "INFO", lines[0]["lvl"])
	require.Equal(t, float64(1), lines[0]["n"])
	require.Equal(t, "WARN", lines[1]["lvl"])
	require.Equal(t, "boom", lines[2]["error"])
}

func TestXLogger_IncreaseLogLevel(t *testing.T) {
	logger, buf := newBufferedXLogger(t, WithXLoggerLevel(LogLevelDebug))
	logger.Debug("first")
	logger.IncreaseLogLevel(zapcore.WarnLevel)
	logger.Info("second")
	logger.Warn("third")
	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	require.Equal(t, "first", lines[0]["msg"])
	require.Equal(t, "third", lines[1]["msg"])
}

func TestXLogger_ErrorStack(t *testing.T) {
	logger, buf := newBufferedXLogger(t, WithXLoggerLevel(LogLevelDebug))
	logger.ErrorStack(infra.NewErrorStack("[test] stacked"), "with stack")
	logger.ErrorStack(errors.New("plain"), "without stack")
	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	require.Equal(t, "[test] stacked", lines[0]["error"])
	frames, ok := lines[0]["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
	require.Equal(t, "plain", lines[1]["error"])
	_, ok = lines[1]["errorStack"]
	require.False(t, ok)
}

func TestXLogger_ContextAndNamed(t *testing.T) {
	logger, buf := newBufferedXLogger(t,
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerContextFieldExtract("traceId", ""),
	)
	//lint:ignore SA1029 string keys are what the extractor looks up
	ctx := context.WithValue(context.Background(), "traceId", "abc-123")
	logger.InfoContext(ctx, "ctx")
	logger.DebugContext(context.Background(), "no ctx value")
	logger.Named("sv").Info("named")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 3)
	require.Equal(t, "abc-123", lines[0]["traceId"])
	require.Equal(t, "nil", lines[1]["traceId"])
	require.Equal(t, "sv", lines[2]["component"])
}

func TestXLogger_BadOptions(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
}

func TestNopXLogger(t *testing.T) {
	logger := NewNopXLogger()
	logger.Info("nothing")
	logger.ErrorStack(infra.NewErrorStack("ignored"), "nothing")
	logger.Logf(zapcore.WarnLevel, "nothing %d", 1)
	require.NoError(t, logger.Sync())
}
