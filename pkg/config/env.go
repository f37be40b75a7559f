package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "LUXEHOME"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "LUXEHOME_APP_ENV"
	EnvPort     = "LUXEHOME_APP_PORT"
	EnvLogLevel = "LUXEHOME_LOG_LEVEL"

	EnvDBDSN      = "LUXEHOME_DB_DSN"
	EnvDBHost     = "LUXEHOME_DB_HOST"
	EnvDBUser     = "LUXEHOME_DB_USER"
	EnvDBName     = "LUXEHOME_DB_NAME"
	EnvDBPassword = "LUXEHOME_DB_PASSWORD"
	EnvUseSQLite  = "LUXEHOME_USE_SQLITE"

	EnvRedisURL = "LUXEHOME_REDIS_URL"

	EnvJWTSecret  = "LUXEHOME_JWT_SECRET"
	EnvJWTIssuer  = "LUXEHOME_JWT_ISSUER"
	EnvJWTExpMins = "LUXEHOME_JWT_EXPIRATION_MINUTES"

	EnvSessionTTL = "LUXEHOME_SESSION_TTL"

	EnvTelegramToken  = "LUXEHOME_TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "LUXEHOME_TELEGRAM_CHAT_ID"

	EnvGCPProjectID      = "LUXEHOME_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "LUXEHOME_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
