// Package dynamodb implements the persistence ports against a single
// DynamoDB table. Visits, history events, snapshots, and directory
// records share the table, discriminated by key prefix.
package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/visit"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// VisitRepository implements ports.VisitRepository using DynamoDB
type VisitRepository struct {
	client       *dynamodb.Client
	tableName    string
	dayIndexName string
	logger       *zap.Logger
}

// NewVisitRepository creates a new VisitRepository
func NewVisitRepository(client *dynamodb.Client, tableName, dayIndexName string, logger *zap.Logger) ports.VisitRepository {
	return &VisitRepository{
		client:       client,
		tableName:    tableName,
		dayIndexName: dayIndexName,
		logger:       logger,
	}
}

// noteItem is the embedded note representation.
type noteItem struct {
	ID        string `dynamodbav:"ID"`
	Text      string `dynamodbav:"Text"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// visitItem represents the DynamoDB item structure for a visit
type visitItem struct {
	PK              string     `dynamodbav:"PK"`
	SK              string     `dynamodbav:"SK"`
	GSI1PK          string     `dynamodbav:"GSI1PK"` // DAY#<day key>
	GSI1SK          string     `dynamodbav:"GSI1SK"` // VISIT#<id>
	EntityType      string     `dynamodbav:"EntityType"`
	VisitID         string     `dynamodbav:"VisitID"`
	Date            string     `dynamodbav:"Date"`
	Day             string     `dynamodbav:"Day"`
	InstitutionID   string     `dynamodbav:"InstitutionID"`
	InstitutionName string     `dynamodbav:"InstitutionName"`
	CreatorID       string     `dynamodbav:"CreatorID"`
	CreatorRole     string     `dynamodbav:"CreatorRole,omitempty"`
	Agenda          string     `dynamodbav:"Agenda,omitempty"`
	Debrief         string     `dynamodbav:"Debrief,omitempty"`
	Notes           []noteItem `dynamodbav:"Notes,omitempty"`
	DisplayOrder    int        `dynamodbav:"DisplayOrder"`
	Status          string     `dynamodbav:"Status"`
	PersonMet       string     `dynamodbav:"PersonMet"`
	Quality         string     `dynamodbav:"Quality"`
	Hours           string     `dynamodbav:"Hours"`
	CreatedAt       string     `dynamodbav:"CreatedAt"`
	UpdatedAt       string     `dynamodbav:"UpdatedAt"`
}

func visitPK(id string) string { return fmt.Sprintf("VISIT#%s", id) }

const visitMetadataSK = "METADATA"

// Save persists a visit to DynamoDB
func (r *VisitRepository) Save(ctx context.Context, v *visit.Visit) error {
	item, err := attributevalue.MarshalMap(r.toItem(v))
	if err != nil {
		return fmt.Errorf("failed to marshal visit: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.NewDatabaseError("save visit", err)
	}

	r.logger.Debug("saved visit",
		zap.String("visit_id", v.ID),
		zap.String("day", v.DayKey()))
	return nil
}

// GetByID retrieves a visit by its ID
func (r *VisitRepository) GetByID(ctx context.Context, id string) (*visit.Visit, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: visitPK(id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get visit", err)
	}
	if result.Item == nil {
		return nil, appErrors.NewNotFoundError("visit")
	}

	var item visitItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal visit: %w", err)
	}
	return r.fromItem(item), nil
}

// ListByDay retrieves all visits for a calendar day via the day GSI.
func (r *VisitRepository) ListByDay(ctx context.Context, dayKey string) ([]*visit.Visit, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("DAY#%s", dayKey)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var visits []*visit.Visit
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.dayIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("query visits by day", err)
		}

		for _, raw := range result.Items {
			var item visitItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping malformed visit item",
					zap.String("day", dayKey), zap.Error(err))
				continue
			}
			visits = append(visits, r.fromItem(item))
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}
	return visits, nil
}

// ListByDateRange retrieves visits with from <= date < to, querying the
// day GSI one day at a time.
func (r *VisitRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		dayVisits, err := r.ListByDay(ctx, visit.DayKey(day))
		if err != nil {
			return nil, err
		}
		visits = append(visits, dayVisits...)
	}
	return visits, nil
}

// ListAll pages through every visit using a filtered table scan.
func (r *VisitRepository) ListAll(ctx context.Context, pageToken string, limit int) ([]*visit.Visit, string, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("EntityType").Equal(expression.Value("VISIT"))).
		Build()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(int32(limit)),
	}
	if pageToken != "" {
		startKey, err := decodePageToken(pageToken)
		if err != nil {
			return nil, "", appErrors.NewValidationError("invalid page token")
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", appErrors.NewDatabaseError("scan visits", err)
	}

	visits := make([]*visit.Visit, 0, len(result.Items))
	for _, raw := range result.Items {
		var item visitItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("skipping malformed visit item", zap.Error(err))
			continue
		}
		visits = append(visits, r.fromItem(item))
	}

	nextToken := ""
	if result.LastEvaluatedKey != nil {
		nextToken, err = encodePageToken(result.LastEvaluatedKey)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode page token: %w", err)
		}
	}
	return visits, nextToken, nil
}

// UpdateOrder writes only the order key of one visit. The condition keeps
// an order write from resurrecting a deleted visit as a bare item.
func (r *VisitRepository) UpdateOrder(ctx context.Context, id string, order int) error {
	update := expression.Set(expression.Name("DisplayOrder"), expression.Value(order)).
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
			"PK": &types.AttributeValueMemberS{Value: visitPK(id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return appErrors.NewNotFoundError("visit")
		}
		return appErrors.NewDatabaseError("update visit order", err)
	}
	return nil
}

func (r *VisitRepository) toItem(v *visit.Visit) visitItem {
	notes := make([]noteItem, 0, len(v.Notes))
	for _, n := range v.Notes {
		notes = append(notes, noteItem{
			ID:        n.ID,
			Text:      n.Text,
			CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return visitItem{
		PK:              visitPK(v.ID),
		SK:              visitMetadataSK,
		GSI1PK:          fmt.Sprintf("DAY#%s", v.DayKey()),
		GSI1SK:          visitPK(v.ID),
		EntityType:      "VISIT",
		VisitID:         v.ID,
		Date:            v.Date.Format(time.RFC3339Nano),
		Day:             v.DayKey(),
		InstitutionID:   v.InstitutionID,
		InstitutionName: v.InstitutionName,
		CreatorID:       v.CreatorID,
		CreatorRole:     v.CreatorRole,
		Agenda:          v.Agenda,
		Debrief:         v.Debrief,
		Notes:           notes,
		DisplayOrder:    v.Order,
		Status:          string(v.Status),
		PersonMet:       string(v.PersonMet),
		Quality:         string(v.Quality),
		Hours:           string(v.Hours),
		CreatedAt:       v.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:       v.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// fromItem converts a stored item back to the domain model. Malformed
// timestamps fall back to the zero time rather than failing the read.
func (r *VisitRepository) fromItem(item visitItem) *visit.Visit {
	notes := make([]visit.Note, 0, len(item.Notes))
	for _, n := range item.Notes {
		notes = append(notes, visit.Note{
			ID:        n.ID,
			Text:      n.Text,
			CreatedAt: parseTime(n.CreatedAt),
		})
	}
	return &visit.Visit{
		ID:              item.VisitID,
		Date:            parseTime(item.Date),
		InstitutionID:   item.InstitutionID,
		InstitutionName: item.InstitutionName,
		CreatorID:       item.CreatorID,
		CreatorRole:     item.CreatorRole,
		Agenda:          item.Agenda,
		Debrief:         item.Debrief,
		Notes:           notes,
		Order:           item.DisplayOrder,
		Status:          visit.ParseStatus(item.Status),
		PersonMet:       visit.ParsePersonMet(item.PersonMet),
		Quality:         visit.ParseQuality(item.Quality),
		Hours:           visit.ParseHours(item.Hours),
		CreatedAt:       parseTime(item.CreatedAt),
		UpdatedAt:       parseTime(item.UpdatedAt),
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodePageToken(key map[string]types.AttributeValue) (string, error) {
	plain := make(map[string]string, len(key))
	for k, v := range key {
		sv, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("unsupported key attribute type for %s", k)
		}
		plain[k] = sv.Value
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodePageToken(token string) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var plain map[string]string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	key := make(map[string]types.AttributeValue, len(plain))
	for k, v := range plain {
		key[k] = &types.AttributeValueMemberS{Value: v}
	}
	return key, nil
}
