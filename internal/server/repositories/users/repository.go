package users

import (
	"context"

	"github.com/boycottpro/users/internal/server/models"
)

type Repository interface {
	// Upgrade sets paying_user on the user and returns the stored record as
	// it is after the update. A missing user yields common.ErrNotFound.
	// When the update committed but some attributes had an unexpected type,
	// the rest of the record is returned with an error wrapping
	// common.ErrPartialRecord.
	Upgrade(ctx context.Context, userID string) (*models.User, error)
}
