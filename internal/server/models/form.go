// Package models holds the records the service reads and writes, and the
// request and response bodies of the upgrade handler.
package models

import (
	"bytes"
	"fmt"

	"github.com/boycottpro/users/internal/common"
	jsoniter "github.com/json-iterator/go"
)

// formJSON matches object keys exactly, so "USER_BOYCOTTS" does not stand in
// for "user_boycotts".
var formJSON = jsoniter.Config{CaseSensitive: true}.Froze()

// UpgradeForm is the request body. A list that is absent or null decodes to
// nil and is rejected; an empty list is accepted and skipped.
type UpgradeForm struct {
	UserBoycotts []BoycottRecord `json:"user_boycotts"`
	UserCauses   []CauseRecord   `json:"user_causes"`
}

// Validate reports ErrValidation when either list is structurally absent.
func (f *UpgradeForm) Validate() error {
	if f == nil || f.UserBoycotts == nil || f.UserCauses == nil {
		return common.ErrValidation
	}
	return nil
}

// ParseUpgradeForm decodes and validates body.
func ParseUpgradeForm(body []byte) (*UpgradeForm, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", common.ErrValidation)
	}
	var form *UpgradeForm
	if err := formJSON.Unmarshal(body, &form); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return form, nil
}
