package dynamodb

import (
	"context"
	"fmt"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/directory"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type userItem struct {
	PK            string `dynamodbav:"PK"` // USER#<id>
	SK            string `dynamodbav:"SK"` // METADATA
	EntityType    string `dynamodbav:"EntityType"`
	UserID        string `dynamodbav:"UserID"`
	Email         string `dynamodbav:"Email"`
	DisplayName   string `dynamodbav:"DisplayName"`
	Role          string `dynamodbav:"Role"`
	InstitutionID string `dynamodbav:"InstitutionID,omitempty"`
	Disabled      bool   `dynamodbav:"Disabled"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
	UpdatedAt     string `dynamodbav:"UpdatedAt"`
}

func userPK(id string) string { return fmt.Sprintf("USER#%s", id) }

// Save persists a user record
func (r *UserRepository) Save(ctx context.Context, u *directory.User) error {
	item, err := attributevalue.MarshalMap(userItem{
		PK:            userPK(u.ID),
		SK:            visitMetadataSK,
		EntityType:    "USER",
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          string(u.Role),
		InstitutionID: u.InstitutionID,
		Disabled:      u.Disabled,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.NewDatabaseError("save user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*directory.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get user", err)
	}
	if result.Item == nil {
		return nil, appErrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return userFromItem(item), nil
}

// List returns every user in the directory
func (r *UserRepository) List(ctx context.Context) ([]*directory.User, error) {
	items, err := scanByEntityType(ctx, r.client, r.tableName, "USER")
	if err != nil {
		return nil, appErrors.NewDatabaseError("list users", err)
	}

	users := make([]*directory.User, 0, len(items))
	for _, raw := range items {
		var item userItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping malformed user item", zap.Error(err))
			continue
		}
		users = append(users, userFromItem(item))
	}
	return users, nil
}

// UpdateRole writes only the role of one user.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role directory.Role) error {
	update := expression.Set(expression.Name("Role"), expression.Value(string(role))).
		Set(expression.Name("UpdatedAt"), expression.Value(time.Now().Format(time.RFC3339Nano)))
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return appErrors.NewDatabaseError("update user role", err)
	}
	return nil
}

func userFromItem(item userItem) *directory.User {
	return &directory.User{
		ID:            item.UserID,
		Email:         item.Email,
		DisplayName:   item.DisplayName,
		Role:          directory.Role(item.Role),
		InstitutionID: item.InstitutionID,
		Disabled:      item.Disabled,
		CreatedAt:     parseTime(item.CreatedAt),
		UpdatedAt:     parseTime(item.UpdatedAt),
	}
}

// scanByEntityType pages a filtered scan over one entity type.
func scanByEntityType(ctx context.Context, client *dynamodb.Client, tableName, entityType string) ([]map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("EntityType").Equal(expression.Value(entityType))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		result, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return items, nil
}
