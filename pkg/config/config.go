package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Owner         OwnerConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Quotes        QuotesConfig
	Dashboard     DashboardConfig
	Watcher       WatcherConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BIZZY_APP_ENV" required:"true"`
	Port         string `envconfig:"BIZZY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BIZZY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BIZZY_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"BIZZY_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	return splitList(a.CORSOrigins)
}

type ServiceConfig struct {
	Kind string `envconfig:"BIZZY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BIZZY_DB_DSN"`
	Driver string `envconfig:"BIZZY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BIZZY_DB_HOST"`
	Port     int    `envconfig:"BIZZY_DB_PORT" default:"5432"`
	User     string `envconfig:"BIZZY_DB_USER"`
	Password string `envconfig:"BIZZY_DB_PASSWORD"`
	Name     string `envconfig:"BIZZY_DB_NAME"`
	SSLMode  string `envconfig:"BIZZY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"BIZZY_SQLITE_PATH" default:"bizzyglass.db"`

	MaxOpenConns    int           `envconfig:"BIZZY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BIZZY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BIZZY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIZZY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BIZZY_REDIS_URL"`
	Address      string        `envconfig:"BIZZY_REDIS_ADDR"`
	Password     string        `envconfig:"BIZZY_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIZZY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIZZY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIZZY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIZZY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIZZY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BIZZY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BIZZY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BIZZY_JWT_ISSUER" default:"bizzyglass"`
	ExpirationMinutes      int    `envconfig:"BIZZY_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"BIZZY_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BIZZY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BIZZY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BIZZY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BIZZY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BIZZY_ARGON_KEY_LEN" default:"32"`
}

// OwnerConfig holds the dashboard owner's credential. PasswordHash is an
// argon2id hash; DevPassword is only honoured when the app runs in dev.
type OwnerConfig struct {
	PasswordHash string `envconfig:"BIZZY_OWNER_PASSWORD_HASH"`
	DevPassword  string `envconfig:"BIZZY_OWNER_DEV_PASSWORD"`
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"BIZZY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"BIZZY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"BIZZY_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"BIZZY_AUTO_MIGRATE" default:"false"`
	SeedDemoLeads bool `envconfig:"BIZZY_SEED_DEMO_LEADS" default:"false"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"BIZZY_STRIPE_API_KEY"`
	Env        string `envconfig:"BIZZY_STRIPE_ENV" default:"test"`
	Currency   string `envconfig:"BIZZY_STRIPE_CURRENCY" default:"usd"`
	SuccessURL string `envconfig:"BIZZY_STRIPE_SUCCESS_URL" default:"http://localhost:8080/success"`
	CancelURL  string `envconfig:"BIZZY_STRIPE_CANCEL_URL" default:"http://localhost:8080/cancel"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether real checkout sessions can be created.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type QuotesConfig struct {
	DemoPaymentBaseURL       string `envconfig:"BIZZY_DEMO_PAYMENT_BASE_URL" default:"https://checkout.stripe.com/demo-payment"`
	DefaultDepositPercentage int    `envconfig:"BIZZY_DEFAULT_DEPOSIT_PERCENTAGE" default:"50"`
}

type DashboardConfig struct {
	APIBaseURL        string        `envconfig:"BIZZY_DASHBOARD_API_URL" default:"http://localhost:8080"`
	RequestTimeout    time.Duration `envconfig:"BIZZY_DASHBOARD_REQUEST_TIMEOUT" default:"10s"`
	RetryAttempts     int           `envconfig:"BIZZY_DASHBOARD_RETRY_ATTEMPTS" default:"5"`
	RetryInitialDelay time.Duration `envconfig:"BIZZY_DASHBOARD_RETRY_INITIAL_DELAY" default:"1s"`
	RetryMultiplier   float64       `envconfig:"BIZZY_DASHBOARD_RETRY_MULTIPLIER" default:"1.5"`
	PollInterval      time.Duration `envconfig:"BIZZY_DASHBOARD_POLL_INTERVAL" default:"15s"`
	DemoFallback      bool          `envconfig:"BIZZY_DASHBOARD_DEMO_FALLBACK" default:"false"`
}

type WatcherConfig struct {
	LeadIDs        string        `envconfig:"BIZZY_WATCH_LEAD_IDS"`
	Interval       time.Duration `envconfig:"BIZZY_WATCH_INTERVAL" default:"15s"`
	OverdueAfter   time.Duration `envconfig:"BIZZY_QUOTE_OVERDUE_AFTER" default:"24h"`
	LockTTL        time.Duration `envconfig:"BIZZY_WATCH_LOCK_TTL" default:"1m"`
	CountRetention time.Duration `envconfig:"BIZZY_WATCH_COUNT_RETENTION" default:"168h"`
}

// WatchedLeadIDs returns the configured lead identifiers.
func (w WatcherConfig) WatchedLeadIDs() []string {
	return splitList(w.LeadIDs)
}

type PubSubConfig struct {
	ProjectID       string `envconfig:"BIZZY_GCP_PROJECT_ID"`
	LeadEventsTopic string `envconfig:"BIZZY_PUBSUB_LEAD_EVENTS_TOPIC" default:"bizzy-lead-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BIZZY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BIZZY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BIZZY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range fallbackDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
