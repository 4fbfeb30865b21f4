package config

import (
	"flag"
	"fmt"

	"github.com/boycottpro/users/internal/flagx"
)

var knownFlags = []string{
	"-users-table", "-boycotts-table", "-causes-table",
	"-batch-size", "-retries", "-retry-delay",
	"-region", "-dynamo-endpoint",
	"-a", "-s", "-echo-user", "-log-level",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-users-table string      users table
//	-boycotts-table string   boycott records table
//	-causes-table string     cause records table
//	-batch-size int          put requests per BatchWriteItem call (1..25)
//	-retries uint            retry budget for unprocessed items
//	-retry-delay duration    base backoff delay, e.g. 50ms
//	-region string           AWS region
//	-dynamo-endpoint string  DynamoDB endpoint override (DynamoDB Local)
//	-a string                HTTP listen address for the local server
//	-s string                JWT HMAC secret for the local server
//	-echo-user               respond with the redacted user record
//	-log-level string        debug, info, warn or error
//
// Args are filtered with flagx.FilterArgs first so flags owned by other
// layers (-c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("upgrade-user", flag.ContinueOnError)

	fs.StringVar(&config.UsersTable, "users-table", config.UsersTable, "users table")
	fs.StringVar(&config.BoycottsTable, "boycotts-table", config.BoycottsTable, "boycott records table")
	fs.StringVar(&config.CausesTable, "causes-table", config.CausesTable, "cause records table")
	fs.IntVar(&config.BatchSize, "batch-size", config.BatchSize, "put requests per batch write")
	fs.Uint64Var(&config.MaxUnprocessedRetries, "retries", config.MaxUnprocessedRetries, "retry budget for unprocessed items")
	fs.DurationVar(&config.RetryBaseDelay, "retry-delay", config.RetryBaseDelay, "base backoff delay")
	fs.StringVar(&config.AWSRegion, "region", config.AWSRegion, "AWS region")
	fs.StringVar(&config.DynamoEndpoint, "dynamo-endpoint", config.DynamoEndpoint, "DynamoDB endpoint override")
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run local server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.EchoUser, "echo-user", config.EchoUser, "respond with the redacted user record")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	return nil
}
