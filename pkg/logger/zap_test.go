package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGet_Singleton(t *testing.T) {
	ResetForTest()

	logger1 := Get()
	require.NotNil(t, logger1)

	logger2 := Get()
	assert.Same(t, logger1, logger2, "Get() should return the same logger instance")
}

func TestGet_LogLevelFromEnv(t *testing.T) {
	testCases := []struct {
		name        string
		envLevel    string
		expectLevel zapcore.Level
	}{
		{"debug level", "debug", zap.DebugLevel},
		{"info level", "info", zap.InfoLevel},
		{"warn level", "warn", zap.WarnLevel},
		{"error level", "error", zap.ErrorLevel},
		{"uppercase level", "DEBUG", zap.DebugLevel},
		{"dpanic level", "dpanic", zap.DPanicLevel},
		{"invalid level", "invalid_level", zap.InfoLevel},
		{"empty level", "", zap.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ResetForTest()
			t.Setenv("LOG_LEVEL", tc.envLevel)

			l := Get()
			assert.Equal(t, tc.expectLevel, l.Level(), "Logger level with LOG_LEVEL='%s'", tc.envLevel)
		})
	}
	ResetForTest()
}

func TestGet_Development(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "")

	assert.Equal(t, zap.InfoLevel, Get().Level())
}

func TestLogger_WithCtx_FromCtx(t *testing.T) {
	ResetForTest()

	defaultLogger := Get()
	require.NotNil(t, defaultLogger)

	t.Run("FromCtx without logger returns default", func(t *testing.T) {
		l := FromCtx(context.Background())
		assert.Same(t, defaultLogger, l)
	})

	t.Run("WithCtx and FromCtx roundtrip", func(t *testing.T) {
		customLogger := zap.NewNop()
		ctx := WithCtx(context.Background(), customLogger)

		assert.Same(t, customLogger, FromCtx(ctx))
	})

	t.Run("WithCtx with same logger returns original context", func(t *testing.T) {
		customLogger := zap.NewNop()
		ctx1 := WithCtx(context.Background(), customLogger)
		ctx2 := WithCtx(ctx1, customLogger)

		assert.Equal(t, ctx1, ctx2)
	})
}
