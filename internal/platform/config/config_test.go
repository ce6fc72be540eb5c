package config

import (
	"testing"
	"time"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Feed struct {
		PingInterval time.Duration `yaml:"pingInterval"`
	} `yaml:"feed"`
	Addr string `yaml:"addr" env:"CUSTOM_ADDR"`
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("FEED_PINGINTERVAL", "45s")
	t.Setenv("CUSTOM_ADDR", "example:6379")

	cfg := &testConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTP.Port != "9999" {
		t.Errorf("HTTP.Port = %q, want 9999", cfg.HTTP.Port)
	}
	if cfg.Feed.PingInterval != 45*time.Second {
		t.Errorf("Feed.PingInterval = %v, want 45s", cfg.Feed.PingInterval)
	}
	if cfg.Addr != "example:6379" {
		t.Errorf("Addr = %q, want explicit env key value", cfg.Addr)
	}
}

func TestLoadRejectsNonStructTarget(t *testing.T) {
	if err := Load(nil); err == nil {
		t.Error("Load(nil) = nil error, want error")
	}
	var s string
	if err := Load(&s); err == nil {
		t.Error("Load(&string) = nil error, want error")
	}
}
