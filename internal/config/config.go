// Package config loads process settings from the environment, an optional
// config file and the mapping import files.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all process configuration, typically loaded from environment
// variables (populated by the .env file in main.go).
type Config struct {
	MongoConnString     string        `mapstructure:"MONGO_CONNECTION_STRING"`
	MongoDatabase       string        `mapstructure:"MONGO_DATABASE"`
	HTTPPort            int           `mapstructure:"HTTP_PORT"`
	LogFile             string        `mapstructure:"LOG_FILE"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	SyncCheckInterval   time.Duration `mapstructure:"SYNC_CHECK_INTERVAL"`
	SyncTimezone        string        `mapstructure:"SYNC_TIMEZONE"`
	ForceSyncRatePerMin int           `mapstructure:"FORCE_SYNC_RATE_PER_MIN"`
	StatsCacheTTL       time.Duration `mapstructure:"STATS_CACHE_TTL"`
	// CORSAllowedOrigins is a comma separated list; empty allows any origin.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var defaults = map[string]interface{}{
	"MONGO_CONNECTION_STRING": "",
	"MONGO_DATABASE":          "cleanflow",
	"HTTP_PORT":               8080,
	"LOG_FILE":                "logs/sync.log",
	"LOG_LEVEL":               "info",
	"SYNC_CHECK_INTERVAL":     "1m",
	"SYNC_TIMEZONE":           "America/Sao_Paulo",
	"FORCE_SYNC_RATE_PER_MIN": 6,
	"STATS_CACHE_TTL":         "30s",
	"CORS_ALLOWED_ORIGINS":    "",
}

// LoadConfig reads the environment and, when configFile is set, that file.
// Environment variables win over file values.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", configFile)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, errors.New(strings.Join(msgs, "; "))
	}
	return cfg, nil
}

func (c *Config) Validate() []error {
	var errs = make([]error, 0)
	if c.MongoConnString == "" {
		errs = append(errs, errors.New("MONGO_CONNECTION_STRING environment variable not set"))
	}
	if err := IsValidPort(c.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if c.SyncCheckInterval <= 0 {
		errs = append(errs, errors.New("SYNC_CHECK_INTERVAL must be positive"))
	}
	if _, err := time.LoadLocation(c.SyncTimezone); err != nil {
		errs = append(errs, errors.Wrap(err, "invalid SYNC_TIMEZONE"))
	}
	if c.StatsCacheTTL <= 0 {
		errs = append(errs, errors.New("STATS_CACHE_TTL must be positive"))
	}
	if c.ForceSyncRatePerMin < 1 {
		errs = append(errs, errors.New("FORCE_SYNC_RATE_PER_MIN must be at least 1"))
	}
	return errs
}

// Location returns the scheduler time zone, or local time if it does not load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SyncTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) AllowedOrigins() []string {
	origins := lo.Map(strings.Split(c.CORSAllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func IsValidPort(port interface{}) error {
	p, err := cast.ToIntE(port)
	if err != nil {
		return errors.Wrapf(err, "invalid port %v", port)
	}
	if p < 1 || p > 65535 {
		return errors.Errorf("port %d out of range 1-65535", p)
	}
	return nil
}
