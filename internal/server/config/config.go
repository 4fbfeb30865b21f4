// Package config handles configuration for the upgrade-user service,
// including defaults, JSON overlay, environment variables and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/boycottpro/users/internal/common"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the handler and its local HTTP adapter.
//
// Fields:
//   - UsersTable / BoycottsTable / CausesTable: DynamoDB table names.
//   - BatchSize: put requests per BatchWriteItem call, at most 25.
//   - MaxUnprocessedRetries / RetryBaseDelay: backoff budget for items the
//     store reports as unprocessed.
//   - AWSRegion / DynamoEndpoint: client settings; the endpoint is only set
//     when talking to DynamoDB Local.
//   - AWSAccessKeyID / AWSSecretAccessKey: optional static credentials. When
//     empty the default credential chain (Lambda role) is used.
//   - EndpointAddrHTTP / SecretKey / CORSOrigins: local HTTP adapter only.
//     SecretKey is the HS256 secret used to verify bearer tokens.
//   - EchoUser: respond with the redacted user record instead of a message.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	UsersTable            string        `env:"USERS_TABLE"`
	BoycottsTable         string        `env:"BOYCOTTS_TABLE"`
	CausesTable           string        `env:"CAUSES_TABLE"`
	BatchSize             int           `env:"BATCH_SIZE"`
	MaxUnprocessedRetries uint64        `env:"MAX_UNPROCESSED_RETRIES"`
	RetryBaseDelay        time.Duration `env:"RETRY_BASE_DELAY"`
	AWSRegion             string        `env:"AWS_REGION"`
	DynamoEndpoint        string        `env:"DYNAMODB_ENDPOINT"`
	AWSAccessKeyID        string        `env:"DYNAMODB_ACCESS_KEY_ID"`
	AWSSecretAccessKey    string        `env:"DYNAMODB_SECRET_ACCESS_KEY"`
	EndpointAddrHTTP      string        `env:"HTTP_ADDR"`
	SecretKey             string        `env:"JWT_SECRET"`
	CORSOrigins           []string      `env:"CORS_ORIGINS" envSeparator:","`
	EchoUser              bool          `env:"ECHO_USER"`
	LogLevel              string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure and must be overridden outside local runs.
func (c *Config) LoadDefaults() {
	c.UsersTable = common.DefaultUsersTable
	c.BoycottsTable = common.DefaultBoycottsTable
	c.CausesTable = common.DefaultCausesTable
	c.BatchSize = common.DynamoBatchWriteLimit
	c.MaxUnprocessedRetries = 5
	c.RetryBaseDelay = 50 * time.Millisecond
	c.AWSRegion = "us-east-1"
	c.DynamoEndpoint = ""
	c.EndpointAddrHTTP = ":8080"
	c.SecretKey = "secretKey"
	c.CORSOrigins = []string{"*"}
	c.EchoUser = false
	c.LogLevel = "info"
}

// Validate reports settings the service cannot run with.
func (c *Config) Validate() error {
	if c.UsersTable == "" || c.BoycottsTable == "" || c.CausesTable == "" {
		return errors.New("table names must not be empty")
	}
	if c.BatchSize < 1 || c.BatchSize > common.DynamoBatchWriteLimit {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", common.DynamoBatchWriteLimit, c.BatchSize)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retry base delay must not be negative, got %s", c.RetryBaseDelay)
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file named by -c/-config
// (or UPGRADE_CONFIG), then environ, then args. A nil environ means the
// process environment.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	getenv := os.Getenv
	if environ != nil {
		getenv = func(k string) string { return environ[k] }
	}

	if err := parseJson(cfg, args, getenv); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads an optional .env file into the process environment and
// then calls Load with os.Args.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}
	return Load(os.Args[1:], nil)
}
