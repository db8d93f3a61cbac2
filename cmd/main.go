package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-service/internal/handler"
	"crm-service/internal/model"
	"crm-service/internal/routes"
	"crm-service/internal/service"
	"crm-service/pkg/config"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "crm-service"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Public CRM API authenticated by per-tenant API tokens",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the tables of every model (development databases)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// bootstrap loads configuration, logger and datastore shared by every command
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = version
	}

	log, err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
		Version:     cfg.Server.Version,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func migrate() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer database.Close(db)

	if err := database.MigrateModels(db, model.AllModels()...); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return err
	}
	log.Info("Migration completed", zap.Int("models", len(model.AllModels())))
	return nil
}

func serve() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting CRM API service...", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer database.Close(db)

	prometheus.Init(cfg.Metrics.Prefix, cfg.Server.Version)
	log.Info("Prometheus metrics initialized")

	services := service.NewServiceManager(db, log, cfg.Auth.TouchTimeout)
	handlers := handler.NewHandlerManager(services, cfg.Server.Version)
	e := routes.SetupRoutes(cfg, handlers, services.Tokens, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("Server stopped unexpectedly", zap.Error(err))
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	services.Tokens.Wait()

	log.Info("Server stopped")
	return nil
}
