package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ccivisits-backend/application/ports"
)

func TestChangeFeed_DeliversMatchingDocuments(t *testing.T) {
	feed := NewChangeFeed(zap.NewNop())

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), "VISIT",
		[]ports.Filter{{Field: "Day", Op: ports.FilterEq, Value: "2024-06-10"}},
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	feed.Notify("VISIT", []ports.Document{
		{"ID": "visit-a", "Day": "2024-06-10"},
		{"ID": "visit-b", "Day": "2024-06-11"},
	})

	select {
	case docs := <-received:
		require.Len(t, docs, 1)
		assert.Equal(t, "visit-a", docs[0]["ID"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}

func TestChangeFeed_IgnoresOtherCollections(t *testing.T) {
	feed := NewChangeFeed(zap.NewNop())

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), "VISIT", nil,
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	feed.Notify("STATS", []ports.Document{{"ID": "week-1"}})

	select {
	case <-received:
		t.Fatal("received notification for a collection not watched")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChangeFeed_CancelStopsDelivery(t *testing.T) {
	feed := NewChangeFeed(zap.NewNop())

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), "VISIT", nil,
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)

	cancel()
	// Cancelling twice is safe.
	cancel()

	feed.Notify("VISIT", []ports.Document{{"ID": "visit-a"}})

	select {
	case <-received:
		t.Fatal("received notification after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChangeFeed_NumericFilters(t *testing.T) {
	feed := NewChangeFeed(zap.NewNop())

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), "VISIT",
		[]ports.Filter{{Field: "Order", Op: ports.FilterGte, Value: 2000}},
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	feed.Notify("VISIT", []ports.Document{
		{"ID": "visit-a", "Order": 1000},
		{"ID": "visit-b", "Order": 2000},
		{"ID": "visit-c", "Order": 3000},
	})

	select {
	case docs := <-received:
		require.Len(t, docs, 2)
		assert.Equal(t, "visit-b", docs[0]["ID"])
		assert.Equal(t, "visit-c", docs[1]["ID"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}
}
