package repomanager

import (
	"github.com/boycottpro/users/internal/server/repositories/boycotts"
	"github.com/boycottpro/users/internal/server/repositories/causes"
	"github.com/boycottpro/users/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Boycotts() boycotts.Repository
	Causes() causes.Repository
}
