// Package config loads configuration structs from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg based on its `env` tags.
//
// Example:
//
//	type Config struct {
//	    HTTPPort  int      `env:"HTTP_PORT" envDefault:"8080"`
//	    JWTSecret string   `env:"JWT_SECRET"`
//	    Brokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
