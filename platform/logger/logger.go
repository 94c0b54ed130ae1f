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
	globalMu sync.RWMutex
	global   = &logger{zap: zap.NewNop()}
)

type logger struct {
	zap *zap.Logger
}

// Init builds the process-wide logger. Level is one of debug, info, warn, error.
func Init(level string, asJSON bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if asJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(lvl))

	globalMu.Lock()
	global = &logger{zap: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}
	globalMu.Unlock()

	return nil
}

func SetNopLogger() {
	globalMu.Lock()
	global = &logger{zap: zap.NewNop()}
	globalMu.Unlock()
}

func L() *logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// WithContext stores fields that every log call with this ctx will carry.
func WithContext(ctx context.Context, fields ...Field) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]Field)
	merged := make([]Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

func With(fields ...Field) *logger { return L().With(fields...) }

func Sync() error { return L().zap.Sync() }

func Debug(ctx context.Context, msg string, fields ...Field) { L().Debug(ctx, msg, fields...) }
func Info(ctx context.Context, msg string, fields ...Field)  { L().Info(ctx, msg, fields...) }
func Warn(ctx context.Context, msg string, fields ...Field)  { L().Warn(ctx, msg, fields...) }
func Error(ctx context.Context, msg string, fields ...Field) { L().Error(ctx, msg, fields...) }

func (l *logger) With(fields ...Field) *logger {
	return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.zap.Debug(msg, withCtxFields(ctx, fields)...)
}

func (l *logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.zap.Info(msg, withCtxFields(ctx, fields)...)
}

func (l *logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.zap.Warn(msg, withCtxFields(ctx, fields)...)
}

func (l *logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.zap.Error(msg, withCtxFields(ctx, fields)...)
}

func withCtxFields(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	ctxFields, _ := ctx.Value(ctxKey{}).([]Field)
	if len(ctxFields) == 0 {
		return fields
	}
	return append(ctxFields[:len(ctxFields):len(ctxFields)], fields...)
}
