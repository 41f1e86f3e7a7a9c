// Package logging builds the application zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 20
	maxBackups = 3
	maxAgeDays = 14
)

// New returns a JSON logger at level writing to a rotated file, or to stderr when file is empty.
func New(level zapcore.Level, file string) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer
	if file == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		})
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller())
}
