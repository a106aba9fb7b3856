// Package logging builds the zap loggers used by the CLI and the solver.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	Verbose bool
	JSON    bool
	// Files receive a copy of every entry in addition to stdout.
	Files []string
	// Quiet drops the stdout sink.
	Quiet bool
}

// New returns a production-configured logger.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if !opts.JSON {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.Sampling = nil
	config.DisableStacktrace = !opts.Verbose

	config.OutputPaths = nil
	if !opts.Quiet {
		config.OutputPaths = append(config.OutputPaths, "stdout")
	}
	config.OutputPaths = append(config.OutputPaths, opts.Files...)
	if len(config.OutputPaths) == 0 {
		return zap.NewNop(), nil
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// WithFile returns a logger that also writes to path. The returned function
// syncs and closes the extra sink.
func WithFile(base *zap.Logger, path string, verbose bool) (*zap.Logger, func(), error) {
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), sink, level)

	logger := base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}
