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

	"github.com/bizzyglass/bizzyglass-backend/api/routes"
	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	"github.com/bizzyglass/bizzyglass-backend/pkg/auth/session"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/migrate"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	"github.com/bizzyglass/bizzyglass-backend/pkg/redis"
	"github.com/bizzyglass/bizzyglass-backend/pkg/stripe"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Owner:          cfg.Owner,
		AllowDevSecret: cfg.App.IsDev(),
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	leadRepo := leads.NewRepository(dbClient.DB())
	leadService, err := leads.NewService(leads.ServiceParams{
		Repo:    leadRepo,
		Tx:      dbClient,
		Outbox:  outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics: metrics.NewLeadMetrics(registry),
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lead service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDemoLeads {
		if _, err := leadService.SeedDemo(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed demo leads", err)
			os.Exit(1)
		}
	}

	quoteService, err := newQuoteService(context.Background(), cfg, logg, leadRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			registry,
			metrics.NewHTTPMetrics(registry),
			authService,
			leadService,
			quoteService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}

// newQuoteService uses Stripe checkout sessions for quote links when an API key
// is configured and the demo link format otherwise.
func newQuoteService(ctx context.Context, cfg *config.Config, logg *logger.Logger, leadRepo *leads.Repository) (quotes.Service, error) {
	if !cfg.Stripe.Enabled() {
		logg.Warn(ctx, "stripe not configured, quote messages use demo payment links")
		return quotes.NewService(leadRepo, quotes.DemoLinker{BaseURL: cfg.Quotes.DemoPaymentBaseURL}, nil)
	}

	client, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return nil, err
	}
	checkout, err := stripe.NewCheckoutLinker(client, cfg.Stripe)
	if err != nil {
		return nil, err
	}
	return quotes.NewService(leadRepo, quotes.NewStripeLinker(checkout), checkout)
}
