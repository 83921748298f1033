// Package providers contains dependency injection providers for the Quiver server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/quiverapp/quiver-server/internal/config"
	"github.com/quiverapp/quiver-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:     logger.ParseLevel(cfg.Logger.Level),
		Format:    cfg.Logger.Format,
		AddSource: cfg.App.Environment == "development",
	})

	log.Info("Starting Quiver server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.App.DataPath,
		"database_driver", cfg.Database.Driver,
	)

	return log, nil
}
