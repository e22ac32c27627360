package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BOUNCEHQ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BOUNCEHQ_DB_DSN"
	EnvDBHost = "BOUNCEHQ_DB_HOST"
	EnvDBUser = "BOUNCEHQ_DB_USER"
	EnvDBName = "BOUNCEHQ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GoogleMaps   GoogleMapsConfig
	Warehouse    WarehouseConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOUNCEHQ_APP_ENV" required:"true"`
	Port         string `envconfig:"BOUNCEHQ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOUNCEHQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOUNCEHQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOUNCEHQ_DB_DSN"`
	Driver string `envconfig:"BOUNCEHQ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOUNCEHQ_DB_HOST"`
	LegacyPort     int    `envconfig:"BOUNCEHQ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOUNCEHQ_DB_USER"`
	LegacyPassword string `envconfig:"BOUNCEHQ_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOUNCEHQ_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOUNCEHQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOUNCEHQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOUNCEHQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOUNCEHQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOUNCEHQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOUNCEHQ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOUNCEHQ_REDIS_ADDR"`
	Password     string        `envconfig:"BOUNCEHQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOUNCEHQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOUNCEHQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOUNCEHQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOUNCEHQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOUNCEHQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOUNCEHQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOUNCEHQ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOUNCEHQ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOUNCEHQ_JWT_EXPIRATION_MINUTES" default:"720"`
}

type GoogleMapsConfig struct {
	APIKey  string        `envconfig:"BOUNCEHQ_GOOGLE_MAPS_API_KEY"`
	Timeout time.Duration `envconfig:"BOUNCEHQ_GOOGLE_MAPS_TIMEOUT" default:"5s"`
}

// WarehouseConfig holds the depot coordinates all delivery distances are
// measured from.
type WarehouseConfig struct {
	Lat float64 `envconfig:"BOUNCEHQ_WAREHOUSE_LAT"`
	Lng float64 `envconfig:"BOUNCEHQ_WAREHOUSE_LNG"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOUNCEHQ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOUNCEHQ_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"BOUNCEHQ_IDEMPOTENCY_TTL" default:"24h"`
}

type RateLimitConfig struct {
	QuoteWindow  time.Duration `envconfig:"BOUNCEHQ_RATE_LIMIT_QUOTE_WINDOW" default:"1m"`
	QuoteIPLimit int           `envconfig:"BOUNCEHQ_RATE_LIMIT_QUOTE_IP_LIMIT" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
