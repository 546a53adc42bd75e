package config

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger. Development gets human readable console
// output; every other environment logs JSON.
func NewLogger(cfg *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Environment == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Str("service", "sbir-marketplace").Logger()
}
