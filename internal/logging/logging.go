// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log sink and level.
type Options struct {
	Level string // debug, info, warn, error
	File  string // rotate JSON logs into File; empty writes console logs to Stderr

	// Stderr overrides os.Stderr for console output.
	Stderr io.Writer
}

// New builds a zap logger. The returned func flushes buffered entries.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zap.WarnLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	var core zapcore.Core
	if opts.File != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "ts"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level)
	} else {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderCfg.TimeKey = ""
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(out), level)
	}

	logger := zap.New(core, zap.AddCaller())
	return logger, func() { _ = logger.Sync() }, nil
}
