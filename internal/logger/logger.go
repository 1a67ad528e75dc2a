// Package logger builds the application logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New creates a console logger at the given level.
func New(level string) (*zap.SugaredLogger, error) {
	zapLevel, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("unknown log level: %s", level)
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := config.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
