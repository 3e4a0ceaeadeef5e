/*
config.go - Runtime configuration for the dose server and CLI

PURPOSE:
  Loads settings from the environment, falling back to an optional .env file
  in the working directory and then to defaults.

VARIABLES:
  PORT                   HTTP port (default: 8080)
  DB_PATH                SQLite database path (default: doses.db, ":memory:" allowed)
  LOG_LEVEL              zerolog level name (default: info)
  LOG_FORMAT             console | json (default: console)
  CORS_ORIGINS           Comma separated allowed origins
  LOW_SUPPLY_DAYS        Supply below this many days is reported low (default: 7)
  SUPPLY_CHECK_INTERVAL  Low-supply monitor period, 0 disables it (default: 1h)
  MIXED_NUMBERS          Render fractions as "1 1/2" rather than "3/2" (default: true)

SEE ALSO:
  - cmd/doses/main.go: Uses Config
*/
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port                int           `mapstructure:"PORT"`
	DBPath              string        `mapstructure:"DB_PATH"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	LogFormat           string        `mapstructure:"LOG_FORMAT"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	LowSupplyDays       int           `mapstructure:"LOW_SUPPLY_DAYS"`
	SupplyCheckInterval time.Duration `mapstructure:"SUPPLY_CHECK_INTERVAL"`
	MixedNumbers        bool          `mapstructure:"MIXED_NUMBERS"`
}

var keys = []string{
	"PORT",
	"DB_PATH",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"CORS_ORIGINS",
	"LOW_SUPPLY_DAYS",
	"SUPPLY_CHECK_INTERVAL",
	"MIXED_NUMBERS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "doses.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("LOW_SUPPLY_DAYS", 7)
	v.SetDefault("SUPPLY_CHECK_INTERVAL", "1h")
	v.SetDefault("MIXED_NUMBERS", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitOrigins(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be \"console\" or \"json\", got %q", c.LogFormat)
	}
	if c.LowSupplyDays < 0 {
		return fmt.Errorf("LOW_SUPPLY_DAYS must not be negative, got %d", c.LowSupplyDays)
	}
	if c.SupplyCheckInterval < 0 {
		return fmt.Errorf("SUPPLY_CHECK_INTERVAL must not be negative, got %s", c.SupplyCheckInterval)
	}
	return nil
}

// Logger builds the process logger for the configured level and format.
func (c *Config) Logger(out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if c.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
