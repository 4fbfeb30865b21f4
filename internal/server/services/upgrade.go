// Package services contains server-side business logic. This file implements
// UpgradeService, which marks a user as paying and stores the boycott and
// cause records submitted with the upgrade.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/boycottpro/users/internal/common"
	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/models"
	"github.com/boycottpro/users/internal/server/repositories/repomanager"
)

// Step names, in execution order.
const (
	StepUpgradeUser    = "upgrade_user"
	StepInsertBoycotts = "insert_boycotts"
	StepInsertCauses   = "insert_causes"
)

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
	StepNotRun    StepStatus = "not_run"
)

// StepResult records what one write of the upgrade did. Err may be set on a
// succeeded step when the write committed but its result was incomplete.
type StepResult struct {
	Name   string
	Status StepStatus
	Items  int
	Calls  int
	Err    error
}

// UpgradeOutcome is the aggregate of all steps. User is the redacted
// post-update snapshot and is nil when the upgrade step did not succeed.
type UpgradeOutcome struct {
	User  *models.User
	Steps []StepResult
}

// Completed reports whether every step succeeded or was skipped. A nil
// outcome is not completed.
func (o *UpgradeOutcome) Completed() bool {
	if o == nil {
		return false
	}
	for _, s := range o.Steps {
		if s.Status == StepFailed || s.Status == StepNotRun {
			return false
		}
	}
	return true
}

// Reports converts the steps to their response form.
func (o *UpgradeOutcome) Reports() []models.StepReport {
	out := make([]models.StepReport, 0, len(o.Steps))
	for _, s := range o.Steps {
		r := models.StepReport{Name: s.Name, Status: string(s.Status), Items: s.Items}
		if s.Err != nil {
			r.Error = s.Err.Error()
		}
		out = append(out, r)
	}
	return out
}

type UpgradeService struct {
	repomanager repomanager.RepositoryManager
}

func NewUpgradeService(m repomanager.RepositoryManager) *UpgradeService {
	return &UpgradeService{repomanager: m}
}

// Upgrade runs the three writes in order: user update, boycott batch, cause
// batch. The first failure stops the sequence and later steps are marked
// not_run; nothing already written is rolled back. The returned outcome is
// never nil. Errors wrap common.ErrNotFound when the user does not exist and
// common.ErrStoreFailure for any other store error.
func (s *UpgradeService) Upgrade(ctx context.Context, userID string, form *models.UpgradeForm) (*UpgradeOutcome, error) {
	outcome := &UpgradeOutcome{Steps: []StepResult{
		{Name: StepUpgradeUser, Status: StepNotRun},
		{Name: StepInsertBoycotts, Status: StepNotRun},
		{Name: StepInsertCauses, Status: StepNotRun},
	}}

	user, err := s.repomanager.Users().Upgrade(ctx, userID)
	if err != nil && !committed(user, err) {
		outcome.Steps[0].Status = StepFailed
		outcome.Steps[0].Err = err
		if errors.Is(err, common.ErrNotFound) {
			return outcome, err
		}
		return outcome, fmt.Errorf("%w: %w", common.ErrStoreFailure, err)
	}
	redacted := user.Redacted()
	outcome.User = &redacted
	outcome.Steps[0].Status = StepSucceeded
	outcome.Steps[0].Items = 1
	outcome.Steps[0].Calls = 1
	outcome.Steps[0].Err = err

	boycotts := PrepareBoycotts(userID, form.UserBoycotts)
	if err := runStep(&outcome.Steps[1], len(boycotts), func() (dynamox.BatchResult, error) {
		return s.repomanager.Boycotts().InsertMany(ctx, boycotts)
	}); err != nil {
		return outcome, fmt.Errorf("%w: %w", common.ErrStoreFailure, err)
	}

	causes := PrepareCauses(userID, form.UserCauses)
	if err := runStep(&outcome.Steps[2], len(causes), func() (dynamox.BatchResult, error) {
		return s.repomanager.Causes().InsertMany(ctx, causes)
	}); err != nil {
		return outcome, fmt.Errorf("%w: %w", common.ErrStoreFailure, err)
	}

	return outcome, nil
}

// committed reports whether the user update went through even though its
// result could not be fully read back.
func committed(user *models.User, err error) bool {
	return user != nil && errors.Is(err, common.ErrPartialRecord)
}

func runStep(step *StepResult, n int, write func() (dynamox.BatchResult, error)) error {
	if n == 0 {
		step.Status = StepSkipped
		return nil
	}
	res, err := write()
	step.Items = res.Items
	step.Calls = res.Calls
	if err != nil {
		step.Status = StepFailed
		step.Err = err
		return err
	}
	step.Status = StepSucceeded
	return nil
}

// PrepareBoycotts returns copies of records owned by userID with their
// compound key filled in. Any user_id or company_cause_id sent by the client
// is discarded. Records sharing a compound key collapse into one: the last
// one wins and keeps the position of the first, since a single batch write
// may not carry the same key twice.
func PrepareBoycotts(userID string, records []models.BoycottRecord) []models.BoycottRecord {
	out := make([]models.BoycottRecord, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, r := range records {
		r.UserID = userID
		r.CompanyCauseID = r.CompoundKey()
		if i, ok := seen[r.CompanyCauseID]; ok {
			out[i] = r
			continue
		}
		seen[r.CompanyCauseID] = len(out)
		out = append(out, r)
	}
	return out
}

// PrepareCauses returns copies of records owned by userID, one per cause_id.
// Later duplicates replace earlier ones.
func PrepareCauses(userID string, records []models.CauseRecord) []models.CauseRecord {
	out := make([]models.CauseRecord, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, r := range records {
		r.UserID = userID
		if i, ok := seen[r.CauseID]; ok {
			out[i] = r
			continue
		}
		seen[r.CauseID] = len(out)
		out = append(out, r)
	}
	return out
}
