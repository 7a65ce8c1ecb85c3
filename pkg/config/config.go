package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "booking"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "BOOKING_APP_ENV"
	EnvPort           = "BOOKING_APP_PORT"
	EnvDBDSN          = "BOOKING_DB_DSN"
	EnvDBHost         = "BOOKING_DB_HOST"
	EnvDBUser         = "BOOKING_DB_USER"
	EnvDBName         = "BOOKING_DB_NAME"
	EnvRedisURL       = "BOOKING_REDIS_URL"
	EnvCatalogBaseURL = "BOOKING_CATALOG_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	RemoteCart   RemoteCartConfig
	Snapshot     SnapshotConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BOOKING_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKING_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKING_DB_DSN"`
	Driver string `envconfig:"BOOKING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKING_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKING_DB_USER"`
	LegacyPassword string `envconfig:"BOOKING_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKING_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKING_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKING_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKING_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CatalogConfig points at the commerce backend that owns tours and add-on
// products.
type CatalogConfig struct {
	BaseURL        string        `envconfig:"BOOKING_CATALOG_BASE_URL" required:"true"`
	PublishableKey string        `envconfig:"BOOKING_CATALOG_PUBLISHABLE_KEY"`
	RegionID       string        `envconfig:"BOOKING_CATALOG_REGION_ID"`
	Timeout        time.Duration `envconfig:"BOOKING_CATALOG_TIMEOUT" default:"10s"`
	CacheTTL       time.Duration `envconfig:"BOOKING_CATALOG_CACHE_TTL" default:"5m"`
}

// RemoteCartConfig points at the commerce backend cart API that mirrors
// local selections.
type RemoteCartConfig struct {
	BaseURL        string        `envconfig:"BOOKING_REMOTE_CART_BASE_URL"`
	PublishableKey string        `envconfig:"BOOKING_REMOTE_CART_PUBLISHABLE_KEY"`
	Timeout        time.Duration `envconfig:"BOOKING_REMOTE_CART_TIMEOUT" default:"10s"`
	Enabled        bool          `envconfig:"BOOKING_REMOTE_CART_ENABLED" default:"true"`
}

type SnapshotConfig struct {
	Backend string        `envconfig:"BOOKING_SNAPSHOT_BACKEND" default:"redis"`
	TTL     time.Duration `envconfig:"BOOKING_SNAPSHOT_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOOKING_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOOKING_AUTO_MIGRATE" default:"false"`
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
