// Package logger строит zap логгер сервиса по окружению
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ServiceName = "reviewer-rotation"

// NewLogger dev пишет цветной консольный вывод, prod JSON. Пустой level
// оставляет уровень окружения по умолчанию
func NewLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	// Каждая строка помечена сервисом и окружением
	cfg.InitialFields = map[string]any{
		"service": ServiceName,
		"env":     env,
	}

	return cfg.Build()
}
