package config

const EnvPrefix = "BIZZY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "BIZZY_APP_ENV"
	EnvPort                   = "BIZZY_APP_PORT"
	EnvDBDSN                  = "BIZZY_DB_DSN"
	EnvDBHost                 = "BIZZY_DB_HOST"
	EnvDBUser                 = "BIZZY_DB_USER"
	EnvDBName                 = "BIZZY_DB_NAME"
	EnvUseSQLite              = "BIZZY_USE_SQLITE"
	EnvRedisURL               = "BIZZY_REDIS_URL"
	EnvJWTSecret              = "BIZZY_JWT_SECRET"
	EnvJWTIssuer              = "BIZZY_JWT_ISSUER"
	EnvJWTExpMins             = "BIZZY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "BIZZY_REFRESH_TOKEN_TTL_MINUTES"
	EnvOwnerPasswordHash      = "BIZZY_OWNER_PASSWORD_HASH"
	EnvWatchLeadIDs           = "BIZZY_WATCH_LEAD_IDS"
	EnvCORSOrigins            = "BIZZY_CORS_ORIGINS"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
