package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/boycottpro/users/internal/common"
	"github.com/boycottpro/users/internal/dynamox"
	"github.com/boycottpro/users/internal/server/models"
)

type DynamoRepository struct {
	api   dynamox.API
	table string
}

func NewDynamoRepository(api dynamox.API, table string) *DynamoRepository {
	return &DynamoRepository{api: api, table: table}
}

func (r *DynamoRepository) Upgrade(ctx context.Context, userID string) (*models.User, error) {
	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET paying_user = :paying"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":paying": &types.AttributeValueMemberBOOL{Value: true},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to upgrade user: %w", err)
	}

	if out == nil || len(out.Attributes) == 0 {
		return nil, common.ErrNotFound
	}

	return decodeUser(out.Attributes)
}

// decodeUser decodes attribute by attribute so that one mistyped column
// does not hide a committed update.
func decodeUser(item map[string]types.AttributeValue) (*models.User, error) {
	user := &models.User{}
	fields := []struct {
		name string
		dst  any
	}{
		{"user_id", &user.ID},
		{"email_addr", &user.Email},
		{"username", &user.UserName},
		{"created_ts", &user.CreatedTs},
		{"password_hash", &user.PasswordHash},
		{"paying_user", &user.PayingUser},
	}

	var errs []error
	for _, f := range fields {
		av, ok := item[f.name]
		if !ok {
			continue
		}
		if err := attributevalue.Unmarshal(av, f.dst); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
		}
	}
	if len(errs) > 0 {
		return user, fmt.Errorf("%w: error decoding user: %w", common.ErrPartialRecord, errors.Join(errs...))
	}

	return user, nil
}
