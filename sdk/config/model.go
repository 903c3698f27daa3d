// Package config exposes client configuration to SDK consumers.
package config

import (
	internal "github.com/westmarch-io/westmarch/internal/config"
)

// Config is the client configuration.
type Config = internal.Config

// DefaultAPIBaseURL is used when no API endpoint is configured.
const DefaultAPIBaseURL = internal.DefaultAPIBaseURL

// Load reads configuration from configFile (optional), a .env file and
// WESTMARCH_* environment variables.
func Load(configFile string) (*Config, error) {
	return internal.Load(configFile)
}

func DefaultConfig() *Config {
	return internal.DefaultConfig()
}
