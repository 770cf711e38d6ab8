package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"cerberus/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Telegram      TelegramConfig
	Auth          AuthConfig
	Lock          LockConfig
	Storage       StorageConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"cerberus"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	ListenAddr      string        `envconfig:"LISTEN_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// TelegramConfig carries bot credentials and the webhook surface.
// HOST is the public hostname Telegram delivers webhooks to; BOT_HOOK is
// the secret-ish path the webhook is mounted on.
type TelegramConfig struct {
	BotToken    string `envconfig:"BOT_TOKEN" required:"true"`
	WebhookPath string `envconfig:"BOT_HOOK" required:"true"`
	Host        string `envconfig:"HOST" required:"true"`
}

// AuthConfig holds the login password. Compared exactly, case-sensitive.
type AuthConfig struct {
	Password string `envconfig:"PASS" required:"true"`
}

type LockConfig struct {
	Host    string        `envconfig:"LOCK_HOST" required:"true"`
	Port    int           `envconfig:"LOCK_PORT" required:"true"`
	AuthKey string        `envconfig:"LOCK_AUTHKEY" required:"true"`
	Timeout time.Duration `envconfig:"LOCK_TIMEOUT" default:"5s"`
}

// StorageConfig selects the session store backend
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"postgres"` // postgres | redis
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"cerberus"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"cerberus"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
