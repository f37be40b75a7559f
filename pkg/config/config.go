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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Session       SessionConfig
	Cart          CartConfig
	Telegram      TelegramConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
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
	Env          string `envconfig:"LUXEHOME_APP_ENV" required:"true"`
	Port         string `envconfig:"LUXEHOME_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LUXEHOME_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LUXEHOME_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is a comma separated allow-list; empty means local dev origins.
	CORSOrigins []string `envconfig:"LUXEHOME_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"LUXEHOME_DB_DSN"`

	LegacyHost     string `envconfig:"LUXEHOME_DB_HOST"`
	LegacyPort     int    `envconfig:"LUXEHOME_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LUXEHOME_DB_USER"`
	LegacyPassword string `envconfig:"LUXEHOME_DB_PASSWORD"`
	LegacyName     string `envconfig:"LUXEHOME_DB_NAME"`
	LegacySSLMode  string `envconfig:"LUXEHOME_DB_SSLMODE" default:"disable"`

	// SQLitePath is used instead of the DSN when FeatureFlags.UseSQLite is set.
	SQLitePath string `envconfig:"LUXEHOME_DB_SQLITE_PATH" default:"luxehome.db"`

	MaxOpenConns    int           `envconfig:"LUXEHOME_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LUXEHOME_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LUXEHOME_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LUXEHOME_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LUXEHOME_REDIS_URL"`
	Address      string        `envconfig:"LUXEHOME_REDIS_ADDR"`
	Password     string        `envconfig:"LUXEHOME_REDIS_PASSWORD"`
	DB           int           `envconfig:"LUXEHOME_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LUXEHOME_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LUXEHOME_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LUXEHOME_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LUXEHOME_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LUXEHOME_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LUXEHOME_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LUXEHOME_JWT_ISSUER" default:"luxehome"`
	ExpirationMinutes int    `envconfig:"LUXEHOME_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LUXEHOME_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LUXEHOME_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LUXEHOME_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LUXEHOME_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LUXEHOME_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LUXEHOME_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// SessionConfig controls the anonymous storefront session that owns the cart.
type SessionConfig struct {
	CookieName string        `envconfig:"LUXEHOME_SESSION_COOKIE_NAME" default:"luxehome_sid"`
	Header     string        `envconfig:"LUXEHOME_SESSION_HEADER" default:"X-Session-Id"`
	TTL        time.Duration `envconfig:"LUXEHOME_SESSION_TTL" default:"336h"`
	Secure     bool          `envconfig:"LUXEHOME_SESSION_SECURE" default:"false"`
}

type CartConfig struct {
	MaxLines int `envconfig:"LUXEHOME_CART_MAX_LINES" default:"50"`
}

// TelegramConfig is passed to the order notification sender. An empty token
// or chat id disables delivery.
type TelegramConfig struct {
	BotToken     string        `envconfig:"LUXEHOME_TELEGRAM_BOT_TOKEN"`
	ChatID       string        `envconfig:"LUXEHOME_TELEGRAM_CHAT_ID"`
	APIBaseURL   string        `envconfig:"LUXEHOME_TELEGRAM_API_BASE_URL" default:"https://api.telegram.org"`
	Timeout      time.Duration `envconfig:"LUXEHOME_TELEGRAM_TIMEOUT" default:"10s"`
	RatePerSec   float64       `envconfig:"LUXEHOME_TELEGRAM_RATE_PER_SEC" default:"1"`
	RateBurst    int           `envconfig:"LUXEHOME_TELEGRAM_RATE_BURST" default:"5"`
	CurrencySign string        `envconfig:"LUXEHOME_TELEGRAM_CURRENCY_SIGN" default:"$"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"LUXEHOME_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"LUXEHOME_AUTO_MIGRATE" default:"false"`
	AdminRegister bool `envconfig:"LUXEHOME_FEATURE_ADMIN_REGISTER" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"LUXEHOME_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"LUXEHOME_PUBSUB_ORDERS_TOPIC" default:"luxehome-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"LUXEHOME_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"LUXEHOME_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"LUXEHOME_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
