// Package repomanager wires the DynamoDB-backed repositories to one client
// and one set of table names.
package repomanager

import (
	"time"

	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/repositories/boycotts"
	"github.com/boycottpro/users/internal/server/repositories/causes"
	"github.com/boycottpro/users/internal/server/repositories/users"
)

// Tables names the three collections the service touches.
type Tables struct {
	Users    string
	Boycotts string
	Causes   string
}

// BatchOptions tunes the batch writer shared by the record repositories.
type BatchOptions struct {
	Size       int
	MaxRetries uint64
	BaseDelay  time.Duration
}

// DynamoRepositoryManager vends repositories sharing one DynamoDB client.
type DynamoRepositoryManager struct {
	users    *users.DynamoRepository
	boycotts *boycotts.DynamoRepository
	causes   *causes.DynamoRepository
}

func NewDynamoRepositoryManager(api dynamox.API, tables Tables, batch BatchOptions) *DynamoRepositoryManager {
	writer := dynamox.NewBatchWriter(api, batch.Size, batch.MaxRetries, batch.BaseDelay)
	return &DynamoRepositoryManager{
		users:    users.NewDynamoRepository(api, tables.Users),
		boycotts: boycotts.NewDynamoRepository(writer, tables.Boycotts),
		causes:   causes.NewDynamoRepository(writer, tables.Causes),
	}
}

func (m *DynamoRepositoryManager) Users() users.Repository       { return m.users }
func (m *DynamoRepositoryManager) Boycotts() boycotts.Repository { return m.boycotts }
func (m *DynamoRepositoryManager) Causes() causes.Repository     { return m.causes }
