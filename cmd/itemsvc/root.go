package main

import (
	"github.com/deppfellow/itemsvc/internal/config"
	"github.com/deppfellow/itemsvc/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itemsvc",
	Short: "Items CRUD service",
	Long: `itemsvc serves a JSON API for a single "items" resource plus a small
single-page front end.

Configuration comes from ITEMS_* environment variables (and a .env file when
present), e.g. ITEMS_SERVER.PORT=8080 or ITEMS_STORE.DRIVER=postgres.

Running without a subcommand is the same as "itemsvc serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// bootstrap loads configuration and builds the application logger. The
// returned LoggerService must be shut down by the caller.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}
