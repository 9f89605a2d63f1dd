package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/internal/quotes"
	"github.com/bizzyglass/bizzyglass-backend/pkg/auth/session"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db"
	"github.com/bizzyglass/bizzyglass-backend/pkg/db/models"
	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/metrics"
	"github.com/bizzyglass/bizzyglass-backend/pkg/outbox"
	redisclient "github.com/bizzyglass/bizzyglass-backend/pkg/redis"
	"github.com/bizzyglass/bizzyglass-backend/pkg/types"
)

const ownerPassword = "owner-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		JWT: config.JWTConfig{
			Secret:                 "test-secret",
			Issuer:                 "bizzyglass",
			ExpirationMinutes:      30,
			RefreshTokenTTLMinutes: 120,
		},
		Owner:         config.OwnerConfig{DevPassword: ownerPassword},
		AuthRateLimit: config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginIPLimit: 3},
		Quotes:        config.QuotesConfig{DemoPaymentBaseURL: "https://checkout.stripe.com/demo-payment"},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(&models.Lead{}, &models.OutboxEvent{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	dbClient := db.NewFromGorm(conn, config.DriverSQLite)

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	redisClient := redisclient.Wrap(raw)

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	require.NoError(t, err)

	authSvc, err := auth.NewService(auth.ServiceParams{
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		Owner:          cfg.Owner,
		AllowDevSecret: true,
		Logger:         logg,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	repo := leads.NewRepository(conn)
	leadSvc, err := leads.NewService(leads.ServiceParams{
		Repo:    repo,
		Tx:      dbClient,
		Outbox:  outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics: metrics.NewLeadMetrics(reg),
		Logger:  logg,
	})
	require.NoError(t, err)

	quoteSvc, err := quotes.NewService(repo, quotes.DemoLinker{BaseURL: cfg.Quotes.DemoPaymentBaseURL}, nil)
	require.NoError(t, err)

	return NewRouter(cfg, logg, dbClient, redisClient, sessions, reg, metrics.NewHTTPMetrics(reg), authSvc, leadSvc, quoteSvc)
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{"password":"`+ownerPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var envelope types.DataEnvelope[auth.TokenResponse]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

const intakeForm = `{
	"firstName":"Maria","lastName":"Garcia","phone":"555-0101","email":"maria@example.com",
	"make":"Toyota","model":"Camry","year":"2020","bodyType":"Sedan",
	"damageDescription":"Large crack across the windshield","urgency":"emergency"
}`

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", "", "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready", "", "").Code)

	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bizzyglass_http_requests_total")
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/leads", "/api/leads/GLS-001", "/api/leads/stats", "/api/leads/followups"} {
		rec := do(t, h, http.MethodGet, path, "", "")
		require.Equalf(t, http.StatusUnauthorized, rec.Code, "GET %s", path)
	}
	rec := do(t, h, http.MethodPost, "/create-stripe-link", "", `{"amount":10,"label":"x"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeadLifecycleThroughAPI(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/leads", "", intakeForm)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created leads.LeadDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Equal(t, "GLS-001", created.ID)
	require.Equal(t, enums.LeadStatusNew, created.Status)
	require.Len(t, created.Messages, 1)
	require.Equal(t, leads.InitialSystemMessage, created.Messages[0].Message)

	token := login(t, h)

	rec = do(t, h, http.MethodGet, "/api/leads?search=camry", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []leads.LeadDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)

	rec = do(t, h, http.MethodPost, "/api/generate-quote-message", token,
		`{"lead_id":"GLS-001","payment_option":"full","services":[{"id":"aftermarket-windshield","name":"Aftermarket Windshield","price":"300"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote quotes.GenerateQuoteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&quote))
	require.Contains(t, quote.QuoteMessage, "https://checkout.stripe.com/demo-payment-GLS-001-full-300")

	body, err := json.Marshal(map[string]string{"lead_id": "GLS-001", "message_content": quote.QuoteMessage})
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/api/send-final-quote", token, string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quoted leads.LeadDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&quoted))
	require.Equal(t, enums.LeadStatusQuoted, quoted.Status)
	require.Len(t, quoted.Messages, 2)
	require.Contains(t, quoted.Messages[1].Message, "demo-payment-GLS-001-full-300")

	rec = do(t, h, http.MethodPost, "/api/leads/GLS-001/messages", token,
		`{"message":"Or pay here https://checkout.stripe.com/demo-payment-GLS-001-full-300 thanks"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var messaged leads.LeadDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&messaged))
	require.Equal(t, "Or pay here [Payment Link] thanks", messaged.Messages[2].Message)
	require.Equal(t, enums.SenderOwner, messaged.Messages[2].Sender)

	rec = do(t, h, http.MethodGet, "/api/leads/gls-404", token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/leads/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats types.DataEnvelope[leads.Stats]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 1, stats.Data.Total)
	require.Equal(t, 1, stats.Data.Quoted)

	rec = do(t, h, http.MethodPost, "/create-stripe-link", token, `{"amount":125.5,"label":"Deposit"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	h := newTestRouter(t)
	token := login(t, h)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/leads", token, "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/auth/logout", token, "").Code)
	require.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/leads", token, "").Code)
}

func TestLoginIsRateLimitedPerIP(t *testing.T) {
	h := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{"password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/auth/login", "", `{"password":"`+ownerPassword+`"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCatalogIsPublic(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/catalog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope types.DataEnvelope[quotes.Catalog]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.GlassServices)
}
