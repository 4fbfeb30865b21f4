package models

// CauseRecord is a cause a user follows.
type CauseRecord struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	CauseID   string `json:"cause_id" dynamodbav:"cause_id"`
	CauseDesc string `json:"cause_desc,omitempty" dynamodbav:"cause_desc,omitempty"`
	Timestamp string `json:"timestamp,omitempty" dynamodbav:"timestamp,omitempty"`
}
