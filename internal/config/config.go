package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig              `toml:"server"`
	Database   DatabaseConfig            `toml:"database"`
	Redis      RedisConfig               `toml:"redis"`
	Auth       AuthConfig                `toml:"auth"`
	RBAC       RBACConfig                `toml:"rbac"`
	Protection map[string]ProtectionRule `toml:"protection"`
	Jobs       JobsConfig                `toml:"jobs"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// TokenConfig holds the signing secret and lifetime for one token namespace
type TokenConfig struct {
	Secret     string `toml:"secret"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// AuthConfig carries independent token settings for the end-user app and
// the platform operator console
type AuthConfig struct {
	App     TokenConfig `toml:"app"`
	Console TokenConfig `toml:"console"`
}

type RBACConfig struct {
	// Role codes whose tenant-local roles also inherit the grants of every
	// global template role sharing the same code
	InheritedRoleCodes []string `toml:"inherited_role_codes"`
}

// ProtectionRule shields designated identifiers of a resource kind from
// specific actions regardless of RBAC outcome
type ProtectionRule struct {
	Identifiers []string        `toml:"identifiers"`
	Actions     map[string]bool `toml:"actions"`
	Message     string          `toml:"message"`
}

type JobsConfig struct {
	InviteSweepIntervalMinutes int `toml:"invite_sweep_interval_minutes"`
	InviteMaxAgeDays           int `toml:"invite_max_age_days"`
}

// Load reads configuration from a TOML file (optional) and applies
// environment variable overrides on top
func Load(path string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{Port: 8080},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			App:     TokenConfig{TTLMinutes: 720},
			Console: TokenConfig{TTLMinutes: 720},
		},
		RBAC: RBACConfig{InheritedRoleCodes: []string{"OWNER", "ADMIN"}},
		Protection: map[string]ProtectionRule{
			"role": {
				Identifiers: []string{"OWNER", "ADMIN", "MEMBER"},
				Actions:     map[string]bool{"delete": false, "disable": false},
				Message:     "System roles cannot be modified",
			},
		},
		Jobs: JobsConfig{InviteSweepIntervalMinutes: 60, InviteMaxAgeDays: 7},
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	if config.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database.url)")
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			config.Redis.DB = db
		}
	}
	if v := os.Getenv("APP_JWT_SECRET"); v != "" {
		config.Auth.App.Secret = v
	}
	if v := os.Getenv("CONSOLE_JWT_SECRET"); v != "" {
		config.Auth.Console.Secret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
}
