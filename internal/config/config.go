// Package config reads CLI defaults from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed.
var ErrParsingConfig = errors.New("failed to parse configuration")

// Config holds the defaults for the typomata command line.
// Flags given on the command line take precedence.
type Config struct {
	Machine  string `env:"TYPOMATA_MACHINE" envDefault:"coffee"`
	LogLevel string `env:"TYPOMATA_LOG_LEVEL" envDefault:"warn"`
	Port     string `env:"TYPOMATA_PORT" envDefault:"8080"`
	MCPPort  int    `env:"TYPOMATA_MCP_PORT" envDefault:"8081"`
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv never overrides variables that are already set
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if cfg.MCPPort <= 0 || cfg.MCPPort > 65535 {
		return Config{}, fmt.Errorf("%w: TYPOMATA_MCP_PORT out of range: %d", ErrParsingConfig, cfg.MCPPort)
	}
	return cfg, nil
}
