package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bizzyglass/bizzyglass-backend/api/controllers"
	"github.com/bizzyglass/bizzyglass-backend/api/middleware"
	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	pkgAuth "github.com/bizzyglass/bizzyglass-backend/pkg/auth"
	"github.com/bizzyglass/bizzyglass-backend/pkg/auth/session"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	leadService leads.Service,
	quoteService quotes.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	// Public intake form and the catalog it renders.
	r.Post("/api/leads", controllers.LeadCreate(leadService, logg))
	r.Get("/api/catalog", controllers.Catalog(quoteService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(pkgAuth.RoleOwner, logg))

		r.Get("/api/leads", controllers.LeadList(leadService, logg))
		r.Get("/api/leads/stats", controllers.LeadStats(leadService, logg))
		r.Get("/api/leads/followups", controllers.LeadFollowUps(leadService, logg))
		r.Get("/api/leads/{id}", controllers.LeadDetail(leadService, logg))
		r.Post("/api/leads/{id}/messages", controllers.LeadAddMessage(leadService, logg))
		r.Patch("/api/leads/{id}/status", controllers.LeadUpdateStatus(leadService, logg))
		r.Post("/api/generate-quote-message", controllers.GenerateQuoteMessage(quoteService, logg))
		r.Post("/api/send-final-quote", controllers.SendFinalQuote(leadService, logg))
		r.Post("/create-stripe-link", controllers.CreateStripeLink(quoteService, logg))
	})

	return r
}
