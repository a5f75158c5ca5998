package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ServerEnv is the process configuration of cmd/server.
type ServerEnv struct {
	HTTPAddr  string `env:"DICESIM_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr  string `env:"DICESIM_GRPC_ADDR" envDefault:":9090"`
	ConfigDir string `env:"DICESIM_CONFIG_DIR" envDefault:"config"`
	Watch     bool   `env:"DICESIM_WATCH" envDefault:"true"`
	MaxRolls  int    `env:"DICESIM_MAX_ROLLS" envDefault:"1000000"`
	MaxTrials int    `env:"DICESIM_MAX_TRIALS" envDefault:"10000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServerEnv parses ServerEnv from the environment.
func LoadServerEnv() (ServerEnv, error) {
	var cfg ServerEnv
	if err := ParseEnv(&cfg); err != nil {
		return ServerEnv{}, err
	}
	if cfg.MaxRolls < 1 {
		return ServerEnv{}, fmt.Errorf("DICESIM_MAX_ROLLS must be >= 1")
	}
	if cfg.MaxTrials < 1 {
		return ServerEnv{}, fmt.Errorf("DICESIM_MAX_TRIALS must be >= 1")
	}
	return cfg, nil
}
