// Package obs contains observability utilities such as logging.
package obs

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global structured logger used by the bot.
//
// Logger is a no-op until InitLogger is called.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a production (JSON) logger when env is "prod"
// and a development logger otherwise.
func InitLogger(level, env string) error {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeySequence
)

// WithRequestID returns a context carrying the command request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// WithSequence returns a context carrying the command sequence number.
func WithSequence(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, ctxKeySequence, seq)
}

func contextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if seq, ok := ctx.Value(ctxKeySequence).(uint64); ok {
		fields = append(fields, zap.Uint64("sequence", seq))
	}
	return fields
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Info(msg, contextFields(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Warn(msg, contextFields(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Error(msg, contextFields(ctx, fields)...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	Logger.WithOptions(zap.AddCallerSkip(1)).Debug(msg, contextFields(ctx, fields)...)
}
