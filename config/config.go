package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	API      APIConfig
	Tokens   TokenStoreConfig
	HTTP     HTTPConfig
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token      string
	WebhookURL string // empty means long polling
	// SessionIdle drops a chat's session after this long without user input;
	// zero keeps sessions for the life of the process.
	SessionIdle time.Duration
}

type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration // zero means no client timeout
	PollInterval time.Duration
}

// TokenStoreConfig selects where per-chat session tokens live.
type TokenStoreConfig struct {
	Kind     string // memory, postgres or redis
	RedisURL string
}

type HTTPConfig struct {
	Addr string
}

const (
	TokenStoreMemory   = "memory"
	TokenStorePostgres = "postgres"
	TokenStoreRedis    = "redis"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "0"))
	if err != nil {
		return nil, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	poll, err := time.ParseDuration(getEnv("POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("POLL_INTERVAL: %w", err)
	}

	idle, err := time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "menu"),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TOKEN", ""),
			WebhookURL:  getEnv("WEBHOOK_URL", ""),
			SessionIdle: idle,
		},
		API: APIConfig{
			BaseURL:      getEnv("API_BASE_URL", "http://localhost:8000"),
			Timeout:      timeout,
			PollInterval: poll,
		},
		Tokens: TokenStoreConfig{
			Kind:     getEnv("TOKEN_STORE", TokenStoreMemory),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.Tokens.Kind {
	case TokenStoreMemory, TokenStorePostgres, TokenStoreRedis:
	default:
		return nil, fmt.Errorf("TOKEN_STORE: unknown store %q", cfg.Tokens.Kind)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
