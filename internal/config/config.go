package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	HistoryDB       string        `envconfig:"HISTORY_DB" default:"./empgen-history.sqlite"`
	ProfilesDir     string        `envconfig:"PROFILES_DIR" default:"./profiles"`
	OutputDir       string        `envconfig:"OUTPUT_DIR" default:"./exports"`
	BindAddr        string        `envconfig:"BIND_ADDR" default:":8080"`
	NameProvider    string        `envconfig:"NAME_PROVIDER" default:"static"`
	MaxCount        int           `envconfig:"MAX_COUNT" default:"100000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads ./.env when present (variables already set in the environment
// take precedence) and then EMPGEN_* variables.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("EMPGEN", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	if cfg.MaxCount <= 0 {
		return nil, fmt.Errorf("EMPGEN_MAX_COUNT must be > 0, got %d", cfg.MaxCount)
	}
	return &cfg, nil
}
