package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/florincoin/floretarget/internal/config"
)

var globalLogger = zap.NewNop()

// Setup builds the global logger from the logging section of the config.
func Setup(cfg *config.LoggingConfig) error {
	loggerConfig := zap.NewProductionConfig()
	// Change timestamp key name
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	// Use a human readable time format
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(
		time.RFC3339,
	)

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("error configuring logger: %w", err)
		}
		loggerConfig.Level.SetLevel(level)
	}

	l, err := loggerConfig.Build()
	if err != nil {
		return fmt.Errorf("error building logger: %w", err)
	}
	globalLogger = l
	return nil
}

func GetLogger() *zap.Logger {
	return globalLogger
}
