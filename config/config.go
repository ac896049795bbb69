// Package config loads settings from defaults, an optional config file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	// Driver is sqlite, postgres or mongo.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	JWTExpiresIn string `mapstructure:"jwt_expires_in"`
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
}

// TokenTTL parses JWTExpiresIn. Besides Go durations ("24h") it accepts a
// day count such as "7d".
func (a AuthConfig) TokenTTL() (time.Duration, error) {
	return parseTTL(a.JWTExpiresIn)
}

type SeedConfig struct {
	// Enabled exposes POST /api/seed.
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"server.host":         {"SERVER_HOST"},
	"server.port":         {"PORT", "SERVER_PORT"},
	"server.mode":         {"GIN_MODE"},
	"database.driver":     {"DB_DRIVER"},
	"database.dsn":        {"DATABASE_DSN"},
	"mongo.uri":           {"MONGODB_URI"},
	"mongo.database":      {"MONGODB_DB_NAME"},
	"auth.jwt_secret":     {"JWT_SECRET"},
	"auth.jwt_expires_in": {"JWT_EXPIRES_IN"},
	"auth.bcrypt_cost":    {"BCRYPT_COST"},
	"seed.enabled":        {"SEED_ENABLED"},
	"log.level":           {"LOG_LEVEL"},
	"log.format":          {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "water_delivery.db")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "water_delivery")

	v.SetDefault("auth.jwt_secret", "water_delivery_dev_secret_change_me")
	v.SetDefault("auth.jwt_expires_in", "7d")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("seed.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
}

// Load builds the configuration. configFile may be empty, in which case an
// optional ./config.yaml is read if present.
func Load(configFile string) (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret must not be empty")
	}
	if _, err := c.Auth.TokenTTL(); err != nil {
		return fmt.Errorf("config: auth.jwt_expires_in: %w", err)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	return nil
}

func parseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", s)
	}
	return d, nil
}
