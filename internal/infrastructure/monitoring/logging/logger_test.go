package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_BadOutputPath(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/famcare/x.log"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestZapLogger_FieldsAreTranslated(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Info("report generated",
		StudentID("s-1"),
		Int("families", 3),
		Float64("ratio", 1.5),
		Bool("degraded", false),
		Duration("took", time.Second),
		Strings("sections", []string{"maternal"}),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "report generated", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "s-1", ctx["student_id"])
	assert.Equal(t, int64(3), ctx["families"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")
	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	t.Parallel()

	l, logs := newObservedLogger(zapcore.DebugLevel)
	child := l.Named("evaluation").With(SessionID("sess-1"))
	child.Info("recomputed", FormID("anthropometry"))

	entry := logs.All()[0]
	assert.Equal(t, "evaluation", entry.LoggerName)
	assert.Equal(t, "sess-1", entry.ContextMap()["session_id"])
	assert.Equal(t, "anthropometry", entry.ContextMap()["form_id"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, Sync(l))
}

func TestDefault_SetAndGet(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must be ignored")
}

func TestContextPropagation(t *testing.T) {
	t.Parallel()

	l, _ := newObservedLogger(zapcore.InfoLevel)
	fallback := NewNopLogger()

	assert.Equal(t, fallback, FromContext(context.Background(), fallback))
	ctx := NewContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx, fallback))
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	l, err := NewLogger(LogConfig{Level: "info", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	child := l.Named("child").With(String("k", "v"))

	zl := l.(*zapLogger)
	assert.False(t, zl.z.Core().Enabled(zapcore.DebugLevel))
	require.True(t, SetLevel(l, "debug"))
	assert.True(t, child.(*zapLogger).z.Core().Enabled(zapcore.DebugLevel))

	observed, _ := newObservedLogger(zapcore.InfoLevel)
	assert.False(t, SetLevel(observed, "debug"))
	assert.False(t, SetLevel(NewNopLogger(), "debug"))
}
