// Package logging builds lever's zap logger. The TUI owns the terminal, so
// logs go to a rotating file; CLI commands may add a console core for
// warnings.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lever/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how much to log.
type Options struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Console, when set, also receives warnings and errors in a
	// human-readable form.
	Console io.Writer
}

// FromConfig maps the user's log settings to Options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		File:       cfg.LogFile(),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
}

// New returns a logger writing JSON lines to opts.File. The returned func
// flushes and closes the file.
func New(opts Options) (*zap.SugaredLogger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	if opts.File == "" {
		return nil, nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB, // MB
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays, // days
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level),
	}
	if opts.Console != nil {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.TimeKey = ""
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(opts.Console),
			zapcore.WarnLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	cleanup := func() {
		_ = logger.Sync()
		_ = rotator.Close()
	}
	return logger.Sugar(), cleanup, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
