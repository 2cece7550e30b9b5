// Package logging holds the zap logger shared by the volgen packages.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the shared logger. It is a no-op logger until SetLogger is
// called.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}

	logger.CompareAndSwap(nil, zap.NewNop())

	return logger.Load()
}

// SetLogger replaces the shared logger. A nil l restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	logger.Store(l)
}

// New builds a console logger writing to stderr. Verbose enables debug
// output; otherwise only warnings and errors are printed.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
