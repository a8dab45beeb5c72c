// Package logger wraps zap behind a small interface so packages can
// log without depending on a concrete implementation.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface is the logging surface used throughout the server.
// Fields are alternating key/value pairs.
type Interface interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	With(fields ...any) Interface
	Sync() error
}

// Config controls how the logger is built.
type Config struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type logger struct {
	sugar *zap.SugaredLogger
}

// New builds a zap-backed logger from cfg. Unknown levels fall back
// to info.
func New(cfg Config) (Interface, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &logger{sugar: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() Interface {
	return &logger{sugar: zap.NewNop().Sugar()}
}

func (l *logger) Debug(msg string, fields ...any) { l.sugar.Debugw(msg, fields...) }
func (l *logger) Info(msg string, fields ...any)  { l.sugar.Infow(msg, fields...) }
func (l *logger) Warn(msg string, fields ...any)  { l.sugar.Warnw(msg, fields...) }
func (l *logger) Error(msg string, fields ...any) { l.sugar.Errorw(msg, fields...) }

func (l *logger) With(fields ...any) Interface {
	return &logger{sugar: l.sugar.With(fields...)}
}

func (l *logger) Sync() error { return l.sugar.Sync() }
