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
	Port string `yaml:"port" env:"PROFILE_HTTP_PORT"`
}

// DatabaseConfig holds postgres settings.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn" env:"PROFILE_POSTGRES_DSN"`
	MaxConns int    `yaml:"maxConns" env:"PROFILE_POSTGRES_MAX_CONNS"`
}

// RedisConfig holds redis settings for the subscription registry.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"PROFILE_REDIS_ADDR"`
	Password string `yaml:"password" env:"PROFILE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"PROFILE_REDIS_DB"`
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret           string `yaml:"secret" env:"PROFILE_JWT_SECRET"`
	ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"PROFILE_JWT_EXPIRES_MINUTES"`
}

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Topic    string         `yaml:"topic" env:"NOTIFICATIONS_TOPIC"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:  HTTPConfig{Port: "8082"},
		Redis: RedisConfig{Addr: "localhost:6379"},
		JWT:   JWTConfig{ExpiresInMinutes: 60},
		Topic: "parking:notifications",
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8082"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
