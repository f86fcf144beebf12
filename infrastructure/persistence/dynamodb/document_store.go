package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ccivisits-backend/application/ports"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DocumentStore implements ports.DocumentStore over the shared table.
// Collections map to key prefixes: a document lives at PK=<COLLECTION>#<id>,
// SK=METADATA with EntityType=<COLLECTION>.
type DocumentStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func documentPK(collection, id string) string {
	return fmt.Sprintf("%s#%s", collection, id)
}

// Get retrieves one document by collection and ID.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (ports.Document, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: documentPK(collection, id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get document", err)
	}
	if result.Item == nil {
		return nil, appErrors.NewNotFoundError("document")
	}

	var doc ports.Document
	if err := attributevalue.UnmarshalMap(result.Item, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

// Query returns all documents in a collection matching the filters. The
// filters run server-side via a filtered scan; the ordering is applied
// client-side after the full result set arrives.
func (s *DocumentStore) Query(ctx context.Context, collection string, filters []ports.Filter, order *ports.Ordering) ([]ports.Document, error) {
	cond := expression.Name("EntityType").Equal(expression.Value(collection))
	for _, f := range filters {
		fc, err := filterCondition(f)
		if err != nil {
			return nil, err
		}
		cond = cond.And(fc)
	}
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	var docs []ports.Document
	var lastKey map[string]types.AttributeValue
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("query documents", err)
		}
		for _, raw := range result.Items {
			var doc ports.Document
			if err := attributevalue.UnmarshalMap(raw, &doc); err != nil {
				s.logger.Warn("skipping malformed document",
					zap.String("collection", collection), zap.Error(err))
				continue
			}
			docs = append(docs, doc)
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	if order != nil {
		sortDocuments(docs, *order)
	}
	return docs, nil
}

// Update applies a partial field update to one document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields ports.Document) error {
	if len(fields) == 0 {
		return nil
	}

	update := expression.Set(expression.Name("UpdatedAt"), expression.Value(time.Now().Format(time.RFC3339Nano)))
	for name, value := range fields {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: documentPK(collection, id)},
			"SK": &types.AttributeValueMemberS{Value: visitMetadataSK},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return appErrors.NewDatabaseError("update document", err)
	}
	return nil
}

// BatchUpdate issues a set of partial updates together. The writes are
// issued sequentially; there is no cross-document atomicity.
func (s *DocumentStore) BatchUpdate(ctx context.Context, writes []ports.BatchWrite) error {
	for _, w := range writes {
		if err := s.Update(ctx, w.Collection, w.ID, w.Fields); err != nil {
			return fmt.Errorf("batch update failed at %s/%s: %w", w.Collection, w.ID, err)
		}
	}
	return nil
}

func filterCondition(f ports.Filter) (expression.ConditionBuilder, error) {
	name := expression.Name(f.Field)
	value := expression.Value(f.Value)
	switch f.Op {
	case ports.FilterEq:
		return name.Equal(value), nil
	case ports.FilterLt:
		return name.LessThan(value), nil
	case ports.FilterLte:
		return name.LessThanEqual(value), nil
	case ports.FilterGt:
		return name.GreaterThan(value), nil
	case ports.FilterGte:
		return name.GreaterThanEqual(value), nil
	default:
		return expression.ConditionBuilder{}, appErrors.NewValidationError(fmt.Sprintf("unsupported filter op %q", f.Op))
	}
}

// sortDocuments orders documents by one field. Mixed-type fields compare
// by their string form so a stray value cannot panic the read path.
func sortDocuments(docs []ports.Document, order ports.Ordering) {
	less := func(i, j int) bool {
		a := fmt.Sprintf("%v", docs[i][order.Field])
		b := fmt.Sprintf("%v", docs[j][order.Field])
		if order.Descending {
			return a > b
		}
		return a < b
	}
	sort.SliceStable(docs, less)
}
