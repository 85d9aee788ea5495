// Package logger builds the zap logger shared by the server and commands.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pageza/recipe-organizer/backend/config"
)

// New returns a production JSON logger in production and a development
// console logger everywhere else. Tests get a no-op logger.
func New(env config.Environment) (*zap.Logger, error) {
	switch env {
	case config.Production:
		return zap.NewProduction()
	case config.Test:
		return zap.NewNop(), nil
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
}

// Sync flushes buffered entries. Errors from syncing stderr/stdout are
// ignored since they are not flushable on most platforms.
func Sync(log *zap.Logger) {
	_ = log.Sync()
}
