package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// parseEnv overlays variables that are set; unset ones keep the value
// already in config.
func parseEnv(config *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	return nil
}
