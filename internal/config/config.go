package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	platformconfig "kickfleet/internal/platform/config"
)

// Config defines kickfleet service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"FLEET_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"FLEET_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"FLEET_REDIS_ADDR"`
		Password string `yaml:"password" env:"FLEET_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"FLEET_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"FLEET_REDIS_TTL"`
	} `yaml:"redis"`
	Feed struct {
		PingInterval time.Duration `yaml:"pingInterval" env:"FLEET_FEED_PING_INTERVAL"`
	} `yaml:"feed"`
}

// Load reads configuration via the shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8090"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 60
	cfg.Feed.PingInterval = 30 * time.Second

	if err := platformconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// StatusCacheTTL returns the device status cache TTL as a duration.
func (c *Config) StatusCacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.TTL) * time.Second
}
