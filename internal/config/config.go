package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var (
	dbUserEmptyError     = errors.New("DB User is Empty")
	dbNameEmptyError     = errors.New("DB Name is Empty")
	envLoadError         = errors.New(".env load Error")
	storageDriverError   = errors.New("unknown storage driver")
	invalidTimeoutError  = errors.New("invalid request timeout")
	invalidAttemptsError = errors.New("invalid notify retry attempts")
)

type AppConfig struct {
	Env            string
	LogLevel       string
	Port           string
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	Password       string
	User           string
	URL            string
	MigrationsPath string
}

type NotifyConfig struct {
	WebhookURL    string
	RetryAttempts uint
}

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Notify   NotifyConfig
}

func LoadConfig() (*Config, error) {
	// .env необязателен, переменные могут прийти из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", envLoadError, err)
	}

	timeout, err := time.ParseDuration(getEnv("APP_REQUEST_TIMEOUT", "2s"))
	if err != nil || timeout <= 0 {
		return nil, invalidTimeoutError
	}

	attempts, err := strconv.ParseUint(getEnv("NOTIFY_RETRY_ATTEMPTS", "3"), 10, 32)
	if err != nil || attempts == 0 {
		return nil, invalidAttemptsError
	}

	c := &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "dev"),
			LogLevel:       os.Getenv("LOG_LEVEL"),
			Port:           getEnv("APP_PORT", "8080"),
			RequestTimeout: timeout,
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StoragePostgres),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DATABASE_HOST", "localhost"),
			Port:           getEnv("DATABASE_PORT", "5432"),
			Name:           getEnv("DATABASE_NAME", "postgres"),
			Password:       getEnv("DATABASE_PASSWORD", "postgres"),
			User:           getEnv("DATABASE_USER", "postgres"),
			URL:            os.Getenv("DATABASE_URL"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Notify: NotifyConfig{
			WebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
			RetryAttempts: uint(attempts),
		},
	}

	switch c.Storage.Driver {
	case StoragePostgres:
		if err := makeDbUrl(c); err != nil {
			return nil, err
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("%w: %s", storageDriverError, c.Storage.Driver)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func makeDbUrl(cfg *Config) error {
	if cfg.Database.URL == "" {
		if cfg.Database.User == "" {
			return dbUserEmptyError
		}
		if cfg.Database.Name == "" {
			return dbNameEmptyError
		}
		cfg.Database.URL = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
		)
	}
	return nil
}
