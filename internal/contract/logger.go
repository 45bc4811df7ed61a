package contract

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats supported by InitLogger.
const (
	ConsoleLogFormat = "console"
	JSONLogFormat    = "json"
)

// InitLogger initializes the global zap logger.
func InitLogger(level, format string) error {
	var zapCfg zap.Config
	switch format {
	case ConsoleLogFormat, "":
		zapCfg = zap.NewDevelopmentConfig()
	case JSONLogFormat:
		zapCfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("invalid log format '%s'. must be console, json", format)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level.SetLevel(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return nil
}
