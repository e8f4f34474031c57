// Package logger builds the zap logger used across the service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger создаёт и возвращает новый экземпляр логгера.
func NewLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("dslf").Sugar(), nil
}

// Sync flushes buffered records; the error on terminals is not actionable.
func Sync(sugar *zap.SugaredLogger) {
	_ = sugar.Sync()
}
