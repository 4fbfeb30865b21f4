package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/boycottpro/users/internal/flagx"
	"github.com/boycottpro/users/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Every field is
// optional; only the ones present override the current values.
type JsonConfig struct {
	UsersTable            *string         `json:"users_table"`
	BoycottsTable         *string         `json:"boycotts_table"`
	CausesTable           *string         `json:"causes_table"`
	BatchSize             *int            `json:"batch_size"`
	MaxUnprocessedRetries *uint64         `json:"max_unprocessed_retries"`
	RetryBaseDelay        *timex.Duration `json:"retry_base_delay"`
	AWSRegion             *string         `json:"aws_region"`
	DynamoEndpoint        *string         `json:"dynamodb_endpoint"`
	EndpointAddrHTTP      *string         `json:"http_addr"`
	SecretKey             *string         `json:"secret_key"`
	CORSOrigins           []string        `json:"cors_origins"`
	EchoUser              *bool           `json:"echo_user"`
	LogLevel              *string         `json:"log_level"`
}

// parseJson reads the file named by -c/-config in args (or UPGRADE_CONFIG)
// into config. No path means nothing to do.
func parseJson(config *Config, args []string, getenv func(string) string) error {
	path := flagx.ConfigPath(args, getenv)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	setIf(&config.UsersTable, c.UsersTable)
	setIf(&config.BoycottsTable, c.BoycottsTable)
	setIf(&config.CausesTable, c.CausesTable)
	setIf(&config.BatchSize, c.BatchSize)
	setIf(&config.MaxUnprocessedRetries, c.MaxUnprocessedRetries)
	if c.RetryBaseDelay != nil {
		config.RetryBaseDelay = c.RetryBaseDelay.Duration
	}
	setIf(&config.AWSRegion, c.AWSRegion)
	setIf(&config.DynamoEndpoint, c.DynamoEndpoint)
	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.SecretKey, c.SecretKey)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	setIf(&config.EchoUser, c.EchoUser)
	setIf(&config.LogLevel, c.LogLevel)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
