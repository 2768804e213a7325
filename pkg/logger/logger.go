// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Init builds the global logger. Production environments get JSON output,
// everything else the human-readable development encoder.
func Init(env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapLogger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	log = zapLogger
	return nil
}

// Get returns the global logger.
func Get() *zap.Logger {
	return log
}

// Sync flushes buffered log entries.
func Sync() {
	_ = log.Sync()
}
