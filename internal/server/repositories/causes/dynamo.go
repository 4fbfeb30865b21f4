package causes

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/models"
)

type DynamoRepository struct {
	writer *dynamox.BatchWriter
	table  string
}

func NewDynamoRepository(writer *dynamox.BatchWriter, table string) *DynamoRepository {
	return &DynamoRepository{writer: writer, table: table}
}

func (r *DynamoRepository) InsertMany(ctx context.Context, records []models.CauseRecord) (dynamox.BatchResult, error) {
	if len(records) == 0 {
		return dynamox.BatchResult{}, nil
	}

	items := make([]map[string]types.AttributeValue, 0, len(records))
	for i, rec := range records {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return dynamox.BatchResult{}, fmt.Errorf("error encoding cause %d: %w", i, err)
		}
		items = append(items, item)
	}

	return r.writer.PutAll(ctx, r.table, items)
}
