package models

import "github.com/boycottpro/users/internal/common"

// User is a row of the users table. Only PayingUser is ever written by this
// service; the rest is read back from the store after the update.
type User struct {
	ID           string `json:"user_id" dynamodbav:"user_id"`
	Email        string `json:"email_addr" dynamodbav:"email_addr"`
	UserName     string `json:"username" dynamodbav:"username"`
	CreatedTs    int64  `json:"created_ts" dynamodbav:"created_ts"`
	PasswordHash string `json:"password_hash" dynamodbav:"password_hash"`
	PayingUser   bool   `json:"paying_user" dynamodbav:"paying_user"`
}

// Redacted returns a copy of u that is safe to put in a response.
func (u User) Redacted() User {
	u.PasswordHash = common.RedactedPassword
	return u
}
