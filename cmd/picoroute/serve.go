package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pedia/picoroute/internal/app"
	"github.com/pedia/picoroute/internal/config"
	"github.com/pedia/picoroute/internal/logging"
)

func serveCmd() *cobra.Command {
	var routesFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if routesFile != "" {
				cfg.RoutesFile = routesFile
			}

			logger, err := logging.New(logging.Config{
				Level:  logging.Level(cfg.LogLevel),
				Format: logging.Format(cfg.LogFormat),
				Output: "stderr",
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			app.Version = version

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("routes registered", zap.Strings("patterns", a.Router().List()))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&routesFile, "routes", "r", "", "YAML route manifest")

	return cmd
}
