package dynamodb

import (
	"context"
	"fmt"
	"time"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/history"
	appErrors "ccivisits-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// batchWriteLimit is the DynamoDB BatchWriteItem cap.
const batchWriteLimit = 25

// HistoryRepository implements ports.HistoryRepository using DynamoDB.
// Events for a visit share one partition; snapshots share another, keyed
// so a version-ordered query needs no sort step.
type HistoryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.HistoryRepository {
	return &HistoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// eventRecord represents how history events are stored in DynamoDB
type eventRecord struct {
	PK         string `dynamodbav:"PK"` // EVENTS#<visit_id>
	SK         string `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EntityType string `dynamodbav:"EntityType"`
	EventID    string `dynamodbav:"EventID"`
	VisitID    string `dynamodbav:"VisitID"`
	Kind       string `dynamodbav:"Kind"`
	Before     string `dynamodbav:"Before,omitempty"`
	After      string `dynamodbav:"After,omitempty"`
	ActorID    string `dynamodbav:"ActorID"`
	ActorName  string `dynamodbav:"ActorName"`
	NoteID     string `dynamodbav:"NoteID,omitempty"`
	Timestamp  string `dynamodbav:"Timestamp"`
}

// snapshotRecord represents how compaction snapshots are stored
type snapshotRecord struct {
	PK         string   `dynamodbav:"PK"` // SNAPSHOTS#<visit_id>
	SK         string   `dynamodbav:"SK"` // SNAPSHOT#<zero-padded version>
	EntityType string   `dynamodbav:"EntityType"`
	SnapshotID string   `dynamodbav:"SnapshotID"`
	VisitID    string   `dynamodbav:"VisitID"`
	Version    int      `dynamodbav:"Version"`
	EventIDs   []string `dynamodbav:"EventIDs"`
	Summary    string   `dynamodbav:"Summary"`
	EventCount int      `dynamodbav:"EventCount"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
}

func eventsPK(visitID string) string    { return fmt.Sprintf("EVENTS#%s", visitID) }
func snapshotsPK(visitID string) string { return fmt.Sprintf("SNAPSHOTS#%s", visitID) }

// AppendEvents appends events to a visit's log in one batch.
func (r *HistoryRepository) AppendEvents(ctx context.Context, visitID string, evts []history.Event) error {
	if len(evts) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(evts))
	for _, e := range evts {
		record := eventRecord{
			PK:         eventsPK(visitID),
			SK:         fmt.Sprintf("EVENT#%s#%s", e.Timestamp.UTC().Format(time.RFC3339Nano), e.ID),
			EntityType: "HISTORY_EVENT",
			EventID:    e.ID,
			VisitID:    visitID,
			Kind:       string(e.Kind),
			Before:     e.Before,
			After:      e.After,
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			NoteID:     e.NoteID,
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for i := 0; i < len(writeRequests); i += batchWriteLimit {
		end := i + batchWriteLimit
		if end > len(writeRequests) {
			end = len(writeRequests)
		}
		result, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: writeRequests[i:end],
			},
		})
		if err != nil {
			return appErrors.NewDatabaseError("append history events", err)
		}
		if len(result.UnprocessedItems) > 0 {
			return appErrors.NewDatabaseError("append history events",
				fmt.Errorf("%d events left unprocessed", len(result.UnprocessedItems[r.tableName])))
		}
	}

	r.logger.Debug("appended history events",
		zap.String("visit_id", visitID),
		zap.Int("count", len(evts)))
	return nil
}

// ListEvents returns a visit's full event log, timestamp ascending. The
// sort key embeds the timestamp so the query order is already correct.
func (r *HistoryRepository) ListEvents(ctx context.Context, visitID string) ([]history.Event, error) {
	records, err := r.queryPartition(ctx, eventsPK(visitID))
	if err != nil {
		return nil, appErrors.NewDatabaseError("list history events", err)
	}

	evts := make([]history.Event, 0, len(records))
	for _, raw := range records {
		var rec eventRecord
		if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
			r.logger.Warn("skipping malformed event record",
				zap.String("visit_id", visitID), zap.Error(err))
			continue
		}
		evts = append(evts, history.Event{
			ID:        rec.EventID,
			VisitID:   rec.VisitID,
			Kind:      history.EventKind(rec.Kind),
			Before:    rec.Before,
			After:     rec.After,
			ActorID:   rec.ActorID,
			ActorName: rec.ActorName,
			NoteID:    rec.NoteID,
			Timestamp: parseTime(rec.Timestamp),
		})
	}
	return evts, nil
}

// ListSnapshots returns a visit's snapshots, version ascending.
func (r *HistoryRepository) ListSnapshots(ctx context.Context, visitID string) ([]history.Snapshot, error) {
	records, err := r.queryPartition(ctx, snapshotsPK(visitID))
	if err != nil {
		return nil, appErrors.NewDatabaseError("list snapshots", err)
	}

	snaps := make([]history.Snapshot, 0, len(records))
	for _, raw := range records {
		var rec snapshotRecord
		if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
			r.logger.Warn("skipping malformed snapshot record",
				zap.String("visit_id", visitID), zap.Error(err))
			continue
		}
		snaps = append(snaps, history.Snapshot{
			ID:         rec.SnapshotID,
			VisitID:    rec.VisitID,
			Version:    rec.Version,
			EventIDs:   rec.EventIDs,
			Summary:    rec.Summary,
			EventCount: rec.EventCount,
			CreatedAt:  parseTime(rec.CreatedAt),
		})
	}
	return snaps, nil
}

// SaveSnapshot persists one compaction snapshot. The condition rejects a
// duplicate version so a lost compaction race surfaces as a conflict
// instead of silently overwriting a snapshot.
func (r *HistoryRepository) SaveSnapshot(ctx context.Context, snap history.Snapshot) error {
	record := snapshotRecord{
		PK:         snapshotsPK(snap.VisitID),
		SK:         fmt.Sprintf("SNAPSHOT#%08d", snap.Version),
		EntityType: "HISTORY_SNAPSHOT",
		SnapshotID: snap.ID,
		VisitID:    snap.VisitID,
		Version:    snap.Version,
		EventIDs:   snap.EventIDs,
		Summary:    snap.Summary,
		EventCount: snap.EventCount,
		CreatedAt:  snap.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return appErrors.NewDatabaseError("save snapshot", err)
	}
	return nil
}

func (r *HistoryRepository) queryPartition(ctx context.Context, pk string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(true),
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
