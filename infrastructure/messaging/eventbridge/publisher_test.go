package eventbridge

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ccivisits-backend/domain/events"
)

type fakePutEventsClient struct {
	input  *awseventbridge.PutEventsInput
	output *awseventbridge.PutEventsOutput
	err    error
}

func (f *fakePutEventsClient) PutEvents(ctx context.Context, params *awseventbridge.PutEventsInput, optFns ...func(*awseventbridge.Options)) (*awseventbridge.PutEventsOutput, error) {
	f.input = params
	return f.output, f.err
}

// unmarshalableEvent cannot be serialized; json.Marshal rejects channels.
type unmarshalableEvent struct {
	events.BaseEvent
	Ch chan int `json:"ch"`
}

func TestPublishBatch_FailedEntryNamesTheEventThatWasSent(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	fake := &fakePutEventsClient{
		output: &awseventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{ErrorCode: aws.String("ThrottlingException"), ErrorMessage: aws.String("slow down")},
			},
		},
	}
	publisher := &EventBridgePublisher{
		client:       fake,
		eventBusName: "test-bus",
		source:       events.SourceBackend,
		logger:       zap.New(core),
	}

	bad := unmarshalableEvent{
		BaseEvent: events.BaseEvent{AggregateID: "x", EventType: "bad.event", Timestamp: time.Now()},
		Ch:        make(chan int),
	}
	good := events.NewVisitCreated("visit-1", "cci-1", "user-1", "2024-06-10", time.Now())

	err := publisher.PublishBatch(context.Background(), []events.DomainEvent{bad, good})
	require.Error(t, err)

	// The bad event never made it into the request.
	require.NotNil(t, fake.input)
	require.Len(t, fake.input.Entries, 1)
	assert.Equal(t, "visit.created", *fake.input.Entries[0].DetailType)

	// The failure log names the event that was actually sent, not the one
	// dropped at marshal time.
	var failLogs []observer.LoggedEntry
	for _, entry := range logs.All() {
		if entry.Message == "failed to publish event" {
			failLogs = append(failLogs, entry)
		}
	}
	require.Len(t, failLogs, 1)
	assert.Equal(t, "visit.created", failLogs[0].ContextMap()["event_type"])
}

func TestPublishBatch_EmptyAfterMarshalFailuresSkipsPut(t *testing.T) {
	fake := &fakePutEventsClient{}
	publisher := &EventBridgePublisher{
		client:       fake,
		eventBusName: "test-bus",
		source:       events.SourceBackend,
		logger:       zap.NewNop(),
	}

	bad := unmarshalableEvent{
		BaseEvent: events.BaseEvent{AggregateID: "x", EventType: "bad.event", Timestamp: time.Now()},
		Ch:        make(chan int),
	}

	err := publisher.PublishBatch(context.Background(), []events.DomainEvent{bad})
	require.NoError(t, err)
	assert.Nil(t, fake.input)
}
