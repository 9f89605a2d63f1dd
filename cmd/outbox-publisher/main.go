package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/instance"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/migrate"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox/registry"
	"github.com/bizzyglass/bizzyglass-backend/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	pubsubClient, err := pubsub.NewClient(bootCtx, cfg.PubSub, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing pubsub client", err)
		}
	}()

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return err
	}

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"topic":       cfg.PubSub.LeadEventsTopic,
		"instance":    instance.ID(),
	})
	logg.Info(ctx, "starting outbox publisher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
	return nil
}
