package config

import (
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Redis struct {
		Addr    string        `yaml:"addr" env:"TEST_REDIS_ADDR"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"redis"`
	Rate   float64  `yaml:"rate"`
	Plates []string `yaml:"plates"`
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_TIMEOUT", "5s")
	t.Setenv("RATE", "2.5")
	t.Setenv("PLATES", "AB12CDE, XY99ZZZ")

	var cfg testConfig
	if err := LoadConfig(&cfg); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Errorf("HTTP.Port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q, want redis:6379", cfg.Redis.Addr)
	}
	if cfg.Redis.Timeout != 5*time.Second {
		t.Errorf("Redis.Timeout = %v, want 5s", cfg.Redis.Timeout)
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate = %v, want 2.5", cfg.Rate)
	}
	if len(cfg.Plates) != 2 || cfg.Plates[0] != "AB12CDE" || cfg.Plates[1] != "XY99ZZZ" {
		t.Errorf("Plates = %v, want [AB12CDE XY99ZZZ]", cfg.Plates)
	}
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig(cfg); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
	if err := LoadConfig(nil); err == nil {
		t.Fatal("expected error for nil target")
	}
}
