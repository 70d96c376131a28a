package cmd

import (
	"github.com/getlawrence/qmaid/internal/config"
	"github.com/getlawrence/qmaid/internal/logger"
	"github.com/getlawrence/qmaid/internal/mta"
)

// AppConfig holds all the shared configuration and dependencies
type AppConfig struct {
	Config    *config.Config
	Logger    *logger.UILogger
	Commander mta.Commander
}

// NewAppConfig creates a new configuration instance. Config and Logger are
// filled in once the persistent flags are parsed.
func NewAppConfig(commander mta.Commander) *AppConfig {
	return &AppConfig{
		Config:    config.DefaultConfig(),
		Commander: commander,
	}
}

func appConfig(c interface{ Value(any) any }) *AppConfig {
	if cfg, ok := c.Value(ConfigKey).(*AppConfig); ok {
		return cfg
	}
	return NewAppConfig(mta.NewRealCommander())
}
