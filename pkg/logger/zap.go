package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

var (
	once   sync.Once
	logger *zap.Logger
)

// Get returns the process-wide logger, building it on first use from
// APP_ENV and LOG_LEVEL.
func Get() *zap.Logger {
	once.Do(func() {
		level := zap.InfoLevel
		invalidLevel := ""
		if raw := os.Getenv("LOG_LEVEL"); raw != "" {
			parsed, err := zapcore.ParseLevel(raw)
			if err != nil {
				invalidLevel = raw
			} else {
				level = parsed
			}
		}

		config := zap.NewProductionConfig()
		if os.Getenv("APP_ENV") == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		config.Level = zap.NewAtomicLevelAt(level)

		logger = zap.Must(config.Build())
		if invalidLevel != "" {
			logger.Warn("Invalid LOG_LEVEL, defaulting to info", zap.String("level", invalidLevel))
		}
	})
	return logger
}

// FromCtx returns the logger stored in ctx, or the default logger.
func FromCtx(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return Get()
}

// WithCtx returns a copy of ctx carrying l.
func WithCtx(ctx context.Context, l *zap.Logger) context.Context {
	if existing, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && existing == l {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// ResetForTest discards the process-wide logger so the next Get rebuilds it.
func ResetForTest() {
	once = sync.Once{}
	logger = nil
}
