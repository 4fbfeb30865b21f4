package models

// BoycottRecord links a user to a company they boycott, pinned either to a
// cause or to a free-text personal reason.
type BoycottRecord struct {
	UserID         string `json:"user_id" dynamodbav:"user_id"`
	CompanyID      string `json:"company_id" dynamodbav:"company_id"`
	CompanyName    string `json:"company_name,omitempty" dynamodbav:"company_name,omitempty"`
	CauseID        string `json:"cause_id,omitempty" dynamodbav:"cause_id,omitempty"`
	CauseDesc      string `json:"cause_desc,omitempty" dynamodbav:"cause_desc,omitempty"`
	CompanyCauseID string `json:"company_cause_id,omitempty" dynamodbav:"company_cause_id"`
	PersonalReason string `json:"personal_reason,omitempty" dynamodbav:"personal_reason,omitempty"`
	Timestamp      string `json:"timestamp,omitempty" dynamodbav:"timestamp,omitempty"`
}

// CompoundKey is the sort key of the boycotts table:
// "<personal_reason>#<company_id>" when a personal reason is given,
// "<company_id>#<cause_id>" otherwise.
func (b BoycottRecord) CompoundKey() string {
	if b.PersonalReason != "" {
		return b.PersonalReason + "#" + b.CompanyID
	}
	return b.CompanyID + "#" + b.CauseID
}
