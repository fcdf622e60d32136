package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz-bot/internal/config"
)

const serviceName = "trivia-quiz-bot"

// New builds a zap logger: JSON in production, human readable otherwise.
// cfg.LogLevel overrides the default level of the environment.
func New(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = level
	}

	zcfg.InitialFields = map[string]any{"service": serviceName}

	return zcfg.Build()
}
