package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bizzyglass/bizzyglass-backend/internal/cron"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/instance"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/migrate"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	"github.com/bizzyglass/bizzyglass-backend/pkg/redis"
)

const (
	serviceName = "lead-watcher"
	lockName    = "lead-watcher"
)

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
		logg.Error(context.Background(), "lead watcher stopped unexpectedly", err)
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

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cronMetrics := metrics.NewCronJobMetrics(reg)
	leadMetrics := metrics.NewLeadMetrics(reg)

	registry, err := buildRegistry(cfg, logg, dbClient, redisClient, leadMetrics)
	if err != nil {
		return err
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Watcher.LockTTL)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Watcher.Interval,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  serviceName,
		"watchedLeads": cfg.Watcher.WatchedLeadIDs(),
		"instance":     instance.ID(),
	})

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting lead watcher")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "lead watcher shutting down gracefully")
	return nil
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, leadMetrics *metrics.LeadMetrics) (*cron.Registry, error) {
	leadRepo := leads.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())

	watchJob, err := cron.NewLeadMessageWatchJob(cron.LeadMessageWatchJobParams{
		Logger:  logg,
		Leads:   leadRepo,
		Counts:  cron.NewRedisCountStore(redisClient, cfg.Watcher.CountRetention),
		LeadIDs: cfg.Watcher.WatchedLeadIDs(),
		Metrics: leadMetrics,
	})
	if err != nil {
		return nil, err
	}

	overdueJob, err := cron.NewQuoteOverdueJob(cron.QuoteOverdueJobParams{
		Logger:       logg,
		DB:           dbClient,
		Leads:        leadRepo,
		Outbox:       outbox.NewService(outboxRepo, logg),
		Metrics:      leadMetrics,
		OverdueAfter: cfg.Watcher.OverdueAfter,
	})
	if err != nil {
		return nil, err
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(watchJob, overdueJob, retentionJob), nil
}
