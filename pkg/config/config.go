package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the platform reads.
const EnvPrefix = "ECOSARO"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "ECOSARO_APP_ENV"
	EnvPort     = "ECOSARO_APP_PORT"
	EnvDBDSN    = "ECOSARO_DB_DSN"
	EnvDBHost   = "ECOSARO_DB_HOST"
	EnvDBUser   = "ECOSARO_DB_USER"
	EnvDBName   = "ECOSARO_DB_NAME"
	EnvRedisURL = "ECOSARO_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Razorpay     RazorpayConfig
	Payouts      PayoutsConfig
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
	Env          string `envconfig:"ECOSARO_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOSARO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOSARO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOSARO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ECOSARO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ECOSARO_DB_DSN"`
	Driver string `envconfig:"ECOSARO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOSARO_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOSARO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOSARO_DB_USER"`
	LegacyPassword string `envconfig:"ECOSARO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOSARO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOSARO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOSARO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOSARO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOSARO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOSARO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOSARO_REDIS_URL" required:"true"`
	Password     string        `envconfig:"ECOSARO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOSARO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOSARO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOSARO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOSARO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOSARO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOSARO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"ECOSARO_RAZORPAY_KEY_ID"`
	KeySecret     string        `envconfig:"ECOSARO_RAZORPAY_KEY_SECRET"`
	WebhookSecret string        `envconfig:"ECOSARO_RAZORPAY_WEBHOOK_SECRET"`
	CallTimeout   time.Duration `envconfig:"ECOSARO_RAZORPAY_CALL_TIMEOUT" default:"15s"`
}

type PayoutsConfig struct {
	ReturnWindowDays int           `envconfig:"ECOSARO_PAYOUT_RETURN_WINDOW_DAYS" default:"7"`
	SweepInterval    time.Duration `envconfig:"ECOSARO_PAYOUT_SWEEP_INTERVAL" default:"24h"`
	WebhookEventTTL  time.Duration `envconfig:"ECOSARO_PAYOUT_WEBHOOK_EVENT_TTL" default:"720h"`
}

// ReturnWindow converts the configured return window into a duration.
func (p PayoutsConfig) ReturnWindow() time.Duration {
	days := p.ReturnWindowDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOSARO_AUTO_MIGRATE" default:"false"`
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
