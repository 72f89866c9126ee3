// Package logger provides a context-aware structured logger built on zap.
package logger

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level.
type Level int8

const (
	LevelDebug Level = Level(zapcore.DebugLevel)
	LevelInfo  Level = Level(zapcore.InfoLevel)
	LevelWarn  Level = Level(zapcore.WarnLevel)
	LevelError Level = Level(zapcore.ErrorLevel)
)

// ParseLevel converts a config string into a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// TraceIDFn extracts a trace ID from the context.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is the logging contract used across the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

var _ LoggerInterface = (*Logger)(nil)

// Logger writes JSON log lines through zap.
type Logger struct {
	sugar     *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a Logger that writes to w at or above minLevel.
// When traceIDFn is nil the OpenTelemetry span in the context is used.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).
		With(zap.String("service", serviceName))

	if traceIDFn == nil {
		traceIDFn = spanTraceID
	}

	return &Logger{
		sugar:     z.Sugar(),
		traceIDFn: traceIDFn,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		sugar:     zap.NewNop().Sugar(),
		traceIDFn: spanTraceID,
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.DebugLevel, 0, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.InfoLevel, 0, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.WarnLevel, 0, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, zapcore.ErrorLevel, 0, msg, args...)
}

// Debugc logs at debug, attributing the line to a frame caller levels up.
func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zapcore.DebugLevel, caller, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zapcore.InfoLevel, caller, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zapcore.WarnLevel, caller, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, zapcore.ErrorLevel, caller, msg, args...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) write(ctx context.Context, lvl zapcore.Level, caller int, msg string, args ...any) {
	s := l.sugar
	if caller > 0 {
		s = s.WithOptions(zap.AddCallerSkip(caller))
	}

	if ctx != nil {
		if id := l.traceIDFn(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}

	s.Logw(lvl, msg, args...)
}

func spanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
