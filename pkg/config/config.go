package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
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
	Env          string `envconfig:"MOBIHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"MOBIHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MOBIHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MOBIHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MOBIHUB_DB_DSN"`

	Host     string `envconfig:"MOBIHUB_DB_HOST"`
	Port     int    `envconfig:"MOBIHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"MOBIHUB_DB_USER"`
	Password string `envconfig:"MOBIHUB_DB_PASSWORD"`
	Name     string `envconfig:"MOBIHUB_DB_NAME"`
	SSLMode  string `envconfig:"MOBIHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOBIHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOBIHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOBIHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOBIHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOBIHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MOBIHUB_REDIS_ADDR"`
	Password     string        `envconfig:"MOBIHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOBIHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOBIHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOBIHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOBIHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOBIHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOBIHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"MOBIHUB_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MOBIHUB_JWT_ISSUER" required:"true"`
	// The observed issuance window is ten days.
	ExpirationMinutes int `envconfig:"MOBIHUB_JWT_EXPIRATION_MINUTES" default:"14400"`
}

// TokenTTL returns the access token validity window.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type StripeConfig struct {
	APIKey   string `envconfig:"MOBIHUB_STRIPE_API_KEY"`
	Env      string `envconfig:"MOBIHUB_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"MOBIHUB_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MOBIHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if parts[env] == "" {
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
