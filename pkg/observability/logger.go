package observability

import (
	"go.uber.org/zap"
)

// LoggerConfig controls log output.
type LoggerConfig struct {
	ServiceName string
	Environment string
	Level       string
	Format      string // "json" or "console"
}

// NewLogger builds a zap logger tagged with the service identity.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	zapConfig.InitialFields = map[string]interface{}{
		"service":     cfg.ServiceName,
		"environment": cfg.Environment,
	}

	return zapConfig.Build()
}
