package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Verbose bool
	// File, when set, adds a rotated JSON log file next to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Sink is a built logger plus the writer HTTP access logs should share.
type Sink struct {
	Logger *zap.Logger
	Output io.Writer
	file   io.Closer
}

func New(opts Options) (*Sink, error) {
	config := zap.NewProductionConfig()
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if opts.File == "" {
		logger, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return &Sink{Logger: logger, Output: os.Stdout}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotated := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 10), // megabytes
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 28), // days
	}
	encoder := zapcore.NewJSONEncoder(config.EncoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), config.Level),
		zapcore.NewCore(encoder, zapcore.AddSync(rotated), config.Level),
	)
	return &Sink{
		Logger: zap.New(core, zap.AddCaller()),
		Output: io.MultiWriter(os.Stdout, rotated),
		file:   rotated,
	}, nil
}

// Close flushes the logger and closes the log file, if any.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	_ = s.Logger.Sync()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
