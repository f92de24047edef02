package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger

	Sync() error
}

type zapLogger struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
}

func wrap(base *zap.Logger) *zapLogger {
	return &zapLogger{base: base, sugared: base.Sugar()}
}

// New builds a zap logger: colored console output when pretty, JSON
// otherwise. An unknown level keeps the zap default (info).
func New(level string, pretty bool) Logger {
	cfg := zap.NewProductionConfig()
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl, ok := parseLevel(level); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	base, err := cfg.Build(
		zap.AddStacktrace(zapcore.FatalLevel),
		zap.Fields(zap.String("app", "hideouts")),
	)
	if err != nil {
		panic(err)
	}
	return wrap(base)
}

// parseLevel accepts debug, info, warn (or warning) and error.
func parseLevel(lvl string) (zapcore.Level, bool) {
	lvl = strings.ToLower(strings.TrimSpace(lvl))
	if lvl == "warning" {
		lvl = "warn"
	}
	l, err := zapcore.ParseLevel(lvl)
	if err != nil || lvl == "" || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel, false
	}
	return l, true
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.base.Fatal(msg, fields...) }

func (l *zapLogger) Debugf(t string, args ...interface{}) { l.sugared.Debugf(t, args...) }
func (l *zapLogger) Infof(t string, args ...interface{})  { l.sugared.Infof(t, args...) }
func (l *zapLogger) Warnf(t string, args ...interface{})  { l.sugared.Warnf(t, args...) }
func (l *zapLogger) Errorf(t string, args ...interface{}) { l.sugared.Errorf(t, args...) }
func (l *zapLogger) Fatalf(t string, args ...interface{}) { l.sugared.Fatalf(t, args...) }

func (l *zapLogger) With(fields ...Field) Logger { return wrap(l.base.With(fields...)) }

func (l *zapLogger) Sync() error { return l.base.Sync() }

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() Logger { return wrap(zap.NewNop()) }

// Field constructors, so packages log without importing zap.
func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Component(name string) Field                  { return zap.String("component", name) }
func Error(err error) Field                        { return zap.Error(err) }
