package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://127.0.0.1:3000"`
	SiteURL       string `env:"SITE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogOutput string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogPath   string `env:"LOG_PATH" envDefault:"logs"`

	// StorageDriver picks the local store backend: memory, file, redis or postgres.
	StorageDriver     string `env:"STORAGE_DRIVER" envDefault:"file"`
	StorageNamespace  string `env:"STORAGE_NAMESPACE" envDefault:"noonOpticals"`
	StorageDir        string `env:"STORAGE_DIR" envDefault:"data"`
	StorageQuotaBytes int    `env:"STORAGE_QUOTA_BYTES" envDefault:"0"`
	DatabaseURL       string `env:"DATABASE_URL"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`

	// RemoteDriver picks the document database mirror: none, memory, firestore or mongo.
	RemoteDriver            string `env:"REMOTE_DRIVER" envDefault:"none"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
	MongoURI                string `env:"MONGODB_URI"`
	MongoDB                 string `env:"MONGODB_DB" envDefault:"noon_opticals"`

	ActivityLogLimit  int   `env:"ACTIVITY_LOG_LIMIT" envDefault:"50"`
	VIPSpendThreshold int64 `env:"VIP_SPEND_THRESHOLD" envDefault:"50000"`
	VIPOrderThreshold int   `env:"VIP_ORDER_THRESHOLD" envDefault:"10"`

	SyncDrainIntervalSeconds int           `env:"SYNC_DRAIN_INTERVAL_SECONDS" envDefault:"60"`
	SyncMaxAttempts          int           `env:"SYNC_MAX_ATTEMPTS" envDefault:"5"`
	SyncBackoffBaseSeconds   int           `env:"SYNC_BACKOFF_BASE_SECONDS" envDefault:"30"`
	SyncOnStart              bool          `env:"SYNC_ON_START" envDefault:"true"`
	SyncRemoteTimeout        time.Duration `env:"SYNC_REMOTE_TIMEOUT" envDefault:"10s"`

	AuthSecret            string `env:"AUTH_SECRET"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"480"`
	AdminUsername         string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword         string `env:"ADMIN_PASSWORD"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	MailFromName    string `env:"MAIL_FROM_NAME" envDefault:"NOON Opticals"`
	MailFromAddress string `env:"MAIL_FROM_ADDRESS" envDefault:"noonopticals@gmail.com"`
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment. Variables already set win over the file.
func Load() (Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	cfg.AdminPassword = strings.TrimSpace(cfg.AdminPassword)
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.RemoteDriver = strings.ToLower(strings.TrimSpace(cfg.RemoteDriver))

	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	if cfg.SyncDrainIntervalSeconds < 1 {
		cfg.SyncDrainIntervalSeconds = 60
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if len(c.AuthSecret) < 32 {
		errs = append(errs, errors.New("AUTH_SECRET must be set and at least 32 characters"))
	}
	switch c.StorageDriver {
	case "memory", "file":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis storage driver"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.RemoteDriver {
	case "none", "memory":
	case "firestore":
		if c.FirebaseProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required for the firestore remote"))
		}
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo remote"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown REMOTE_DRIVER %q", c.RemoteDriver))
	}
	return errors.Join(errs...)
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

func (c Config) DrainInterval() time.Duration {
	return time.Duration(c.SyncDrainIntervalSeconds) * time.Second
}

func (c Config) BackoffBase() time.Duration {
	return time.Duration(c.SyncBackoffBaseSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}
