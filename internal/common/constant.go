// Package common contains shared constants and sentinel errors used across
// the upgrade-user service.
package common

// DynamoBatchWriteLimit is the maximum number of put requests DynamoDB
// accepts in a single BatchWriteItem call.
const DynamoBatchWriteLimit = 25

// Default table names.
const (
	DefaultUsersTable    = "users"
	DefaultBoycottsTable = "user_boycotts"
	DefaultCausesTable   = "user_causes"
)

// RedactedPassword replaces the stored password hash in every user snapshot
// that leaves the service.
const RedactedPassword = "***"

// ContentTypeJSON is the only content type the handler produces.
const ContentTypeJSON = "application/json"
