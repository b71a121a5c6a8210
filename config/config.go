// Package config loads runtime settings for the web server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigFile        = "ytsbrowser.toml"
	defaultPort              = "8080"
	defaultDatabasePath      = "ytsbrowser.db"
	defaultEventRetention    = 30 * 24 * time.Hour
	defaultRetentionInterval = time.Hour
)

// Config holds the server settings. The YTS endpoint and timeout are
// constants of the services package and are not configurable.
type Config struct {
	Port              string
	DatabasePath      string
	EventRetention    time.Duration
	RetentionInterval time.Duration
}

type fileConfig struct {
	Port              string `toml:"port"`
	DatabasePath      string `toml:"database_path"`
	EventRetention    string `toml:"event_retention"`
	RetentionInterval string `toml:"retention_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:              defaultPort,
		DatabasePath:      defaultDatabasePath,
		EventRetention:    defaultEventRetention,
		RetentionInterval: defaultRetentionInterval,
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (CONFIG_FILE or ytsbrowser.toml when empty; a missing file is fine), then
// .env and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	}
	if err := cfg.loadFromFile(path); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Port); v != "" {
		c.Port = v
	}
	if v := strings.TrimSpace(raw.DatabasePath); v != "" {
		c.DatabasePath = v
	}
	if v := strings.TrimSpace(raw.EventRetention); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config event_retention: %w", err)
		}
		c.EventRetention = d
	}
	if v := strings.TrimSpace(raw.RetentionInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config retention_interval: %w", err)
		}
		c.RetentionInterval = d
	}
	return nil
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("EVENT_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse EVENT_RETENTION: %w", err)
		}
		c.EventRetention = d
	}
	if v := os.Getenv("RETENTION_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse RETENTION_INTERVAL: %w", err)
		}
		c.RetentionInterval = d
	}
	return nil
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("port %q is not a valid TCP port", c.Port)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database path is required")
	}
	if c.EventRetention < 0 {
		return fmt.Errorf("event retention must not be negative")
	}
	if c.RetentionInterval <= 0 {
		return fmt.Errorf("retention interval must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
