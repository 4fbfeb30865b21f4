package causes

import (
	"context"

	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/models"
)

type Repository interface {
	// InsertMany stores records as a bulk, unordered write.
	InsertMany(ctx context.Context, records []models.CauseRecord) (dynamox.BatchResult, error)
}
