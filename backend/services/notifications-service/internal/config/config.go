package config

import (
	"errors"
	"os"
	"strings"
	"time"

	libconfig "carpark/backend/libs/config"
)

// DatabaseConfig holds postgres settings for the owner directory.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn" env:"NOTIFICATIONS_POSTGRES_DSN"`
	MaxConns int    `yaml:"maxConns" env:"NOTIFICATIONS_POSTGRES_MAX_CONNS"`
}

// RedisConfig holds redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"NOTIFICATIONS_REDIS_ADDR"`
	Password string `yaml:"password" env:"NOTIFICATIONS_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"NOTIFICATIONS_REDIS_DB"`
}

// FeedConfig holds change feed consumer settings.
type FeedConfig struct {
	Stream    string        `yaml:"stream" env:"NOTIFICATIONS_FEED_STREAM"`
	Group     string        `yaml:"group" env:"NOTIFICATIONS_FEED_GROUP"`
	Consumer  string        `yaml:"consumer" env:"NOTIFICATIONS_FEED_CONSUMER"`
	BatchSize int64         `yaml:"batchSize" env:"NOTIFICATIONS_FEED_BATCH"`
	Block     time.Duration `yaml:"block" env:"NOTIFICATIONS_FEED_BLOCK"`
}

// Config defines notifications service configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Feed     FeedConfig     `yaml:"feed"`
	Topic    string         `yaml:"topic" env:"NOTIFICATIONS_TOPIC"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "notifications-1"
	}

	cfg := &Config{
		Redis: RedisConfig{Addr: "localhost:6379"},
		Feed: FeedConfig{
			Stream:    "parking:sessions:changes",
			Group:     "notifications",
			Consumer:  hostname,
			BatchSize: 32,
			Block:     5 * time.Second,
		},
		Topic: "parking:notifications",
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
	if strings.TrimSpace(cfg.Feed.Stream) == "" || strings.TrimSpace(cfg.Feed.Group) == "" {
		return nil, errors.New("config: feed stream and group required")
	}
	return cfg, nil
}
