package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an alias used by services for dependency injection.
type Logger = zap.SugaredLogger

// New returns a JSON logger at info level tagged with the service name.
func New(service string) *Logger {
	l, err := NewWithLevel(service, "info")
	if err != nil {
		panic(err)
	}
	return l
}

// NewWithLevel builds a service logger at the given level name
// (debug, info, warn, error). Output goes to stdout unless paths are given.
func NewWithLevel(service, level string, paths ...string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = []string{"stdout"}
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      paths,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return z.With(zap.String("service", service)).Sugar(), nil
}

// Nop returns a logger that discards everything; used by tests.
func Nop() *Logger {
	return zap.NewNop().Sugar()
}
