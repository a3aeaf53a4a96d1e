// Package config loads application configuration with koanf.
//
// Loading order, later layers overriding earlier ones:
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file (config.yaml, or the path in REVIEWHUB_CONFIG)
//  3. environment variables prefixed REVIEWHUB_ (REVIEWHUB_SERVER_PORT=9000
//     overrides server.port)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before mapping them onto
// config keys.
const envPrefix = "REVIEWHUB_"

// configPathEnv overrides the config file location.
const configPathEnv = "REVIEWHUB_CONFIG"

// Config holds every tunable of the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Mail     MailConfig     `koanf:"mail"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig locates the SQLite database file. ":memory:" is accepted
// for throwaway instances.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig configures token issuance. JWTSecret has no default — the
// server refuses to start without one.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// MailConfig configures confirmation-code delivery. When Enabled is false
// codes are written to the log instead of sent, which is what you want in
// development.
type MailConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	From    string `koanf:"from"`
}

// LoggingConfig sets the slog level: debug, info, warn, or error.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "data/reviewhub.db",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Mail: MailConfig{
			Enabled: false,
			Port:    25,
			From:    "noreply@reviewhub.local",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load assembles the configuration from defaults, file, and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	// REVIEWHUB_SERVER_PORT → server.port, REVIEWHUB_AUTH_JWT_SECRET →
	// auth.jwt_secret. The first underscore separates the section; the rest
	// of the name stays underscored to match the koanf tags.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required (set %sAUTH_JWT_SECRET)", envPrefix)
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Mail.Enabled && c.Mail.Host == "" {
		return fmt.Errorf("config: mail.host is required when mail is enabled")
	}
	return nil
}

// SlogLevel translates the configured level name for slog.HandlerOptions.
// Unknown names fall back to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
