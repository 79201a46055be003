package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "carpark/backend/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"SESSIONS_HTTP_PORT"`
}

// DatabaseConfig holds postgres settings.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn" env:"SESSIONS_POSTGRES_DSN"`
	MaxConns int    `yaml:"maxConns" env:"SESSIONS_POSTGRES_MAX_CONNS"`
}

// RedisConfig holds redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"SESSIONS_REDIS_ADDR"`
	Password string `yaml:"password" env:"SESSIONS_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"SESSIONS_REDIS_DB"`
}

// FeedConfig holds change feed stream settings.
type FeedConfig struct {
	Stream string `yaml:"stream" env:"SESSIONS_FEED_STREAM"`
	MaxLen int64  `yaml:"maxLen" env:"SESSIONS_FEED_MAXLEN"`
}

// RecognizerConfig holds external plate recognizer settings.
type RecognizerConfig struct {
	BaseURL string        `yaml:"baseUrl" env:"RECOGNIZER_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"RECOGNIZER_TIMEOUT"`
}

// BillingConfig holds the flat pricing policy.
type BillingConfig struct {
	HourlyRate float64 `yaml:"hourlyRate" env:"PARKING_HOURLY_RATE"`
}

// Config defines sessions service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Feed       FeedConfig       `yaml:"feed"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Billing    BillingConfig    `yaml:"billing"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:       HTTPConfig{Port: "8081"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Feed:       FeedConfig{Stream: "parking:sessions:changes", MaxLen: 100000},
		Recognizer: RecognizerConfig{Timeout: 10 * time.Second},
		Billing:    BillingConfig{HourlyRate: 2},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Recognizer.BaseURL) == "" {
		return nil, errors.New("config: recognizer base url required")
	}
	if cfg.Billing.HourlyRate <= 0 {
		return nil, errors.New("config: hourly rate must be positive")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
