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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// InstitutionRepository implements ports.InstitutionRepository using DynamoDB
type InstitutionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InstitutionRepository {
	return &InstitutionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type institutionItem struct {
	PK            string `dynamodbav:"PK"` // CCI#<id>
	SK            string `dynamodbav:"SK"` // METADATA
	EntityType    string `dynamodbav:"EntityType"`
	InstitutionID string `dynamodbav:"InstitutionID"`
	Name          string `dynamodbav:"Name"`
	District      string `dynamodbav:"District,omitempty"`
	Active        bool   `dynamodbav:"Active"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
	UpdatedAt     string `dynamodbav:"UpdatedAt"`
}

func institutionPK(id string) string { return fmt.Sprintf("CCI#%s", id) }

// Save persists an institution record
func (r *InstitutionRepository) Save(ctx context.Context, inst *directory.Institution) error {
	item, err := attributevalue.MarshalMap(institutionItem{
		PK:            institutionPK(inst.ID),
		SK:            visitMetadataSK,
		EntityType:    "INSTITUTION",
		InstitutionID: inst.ID,
		Name:          inst.Name,
		District:      inst.District,
		Active:        inst.Active,
		CreatedAt:     inst.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     inst.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal institution: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.NewDatabaseError("save institution", err)
	}
	return nil
}

// GetByID retrieves an institution by ID
func (r *InstitutionRepository) GetByID(ctx context.Context, id string) (*directory.Institution, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: institutionPK(id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get institution", err)
	}
	if result.Item == nil {
		return nil, appErrors.NewNotFoundError("institution")
	}

	var item institutionItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal institution: %w", err)
	}
	return institutionFromItem(item), nil
}

// List returns every institution
func (r *InstitutionRepository) List(ctx context.Context) ([]*directory.Institution, error) {
	items, err := scanByEntityType(ctx, r.client, r.tableName, "INSTITUTION")
	if err != nil {
		return nil, appErrors.NewDatabaseError("list institutions", err)
	}

	insts := make([]*directory.Institution, 0, len(items))
	for _, raw := range items {
		var item institutionItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping malformed institution item", zap.Error(err))
			continue
		}
		insts = append(insts, institutionFromItem(item))
	}
	return insts, nil
}

func institutionFromItem(item institutionItem) *directory.Institution {
	return &directory.Institution{
		ID:        item.InstitutionID,
		Name:      item.Name,
		District:  item.District,
		Active:    item.Active,
		CreatedAt: parseTime(item.CreatedAt),
		UpdatedAt: parseTime(item.UpdatedAt),
	}
}
