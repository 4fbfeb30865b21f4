package boycotts

import (
	"context"

	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/models"
)

type Repository interface {
	// InsertMany stores records as a bulk, unordered write. Records are
	// expected to carry their user_id and company_cause_id already.
	InsertMany(ctx context.Context, records []models.BoycottRecord) (dynamox.BatchResult, error)
}
