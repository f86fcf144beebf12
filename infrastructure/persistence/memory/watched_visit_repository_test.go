package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ccivisits-backend/application/ports"
	"ccivisits-backend/domain/visit"
	"ccivisits-backend/tests/fixtures"
	"ccivisits-backend/tests/mocks"
)

func TestWatchedVisitRepository_SaveNotifiesDayWatchers(t *testing.T) {
	inner := new(mocks.MockVisitRepository)
	feed := NewChangeFeed(zap.NewNop())
	repo := NewWatchedVisitRepository(inner, feed, zap.NewNop())

	v := fixtures.NewVisitBuilder().
		WithID("visit-1").
		WithDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)).
		WithOrder(1000).
		Build()

	inner.On("Save", mock.Anything, v).Return(nil)
	inner.On("ListByDay", mock.Anything, "2024-06-10").Return([]*visit.Visit{v}, nil)

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), VisitCollection, nil,
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, repo.Save(context.Background(), v))

	select {
	case docs := <-received:
		require.Len(t, docs, 1)
		assert.Equal(t, "visit-1", docs[0]["ID"])
		assert.Equal(t, "2024-06-10", docs[0]["Day"])
		assert.Equal(t, 1000, docs[0]["Order"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}
	inner.AssertExpectations(t)
}

func TestWatchedVisitRepository_UpdateOrderNotifiesDayWatchers(t *testing.T) {
	inner := new(mocks.MockVisitRepository)
	feed := NewChangeFeed(zap.NewNop())
	repo := NewWatchedVisitRepository(inner, feed, zap.NewNop())

	v := fixtures.NewVisitBuilder().
		WithID("visit-1").
		WithDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)).
		WithOrder(2000).
		Build()

	inner.On("UpdateOrder", mock.Anything, "visit-1", 2000).Return(nil)
	inner.On("GetByID", mock.Anything, "visit-1").Return(v, nil)
	inner.On("ListByDay", mock.Anything, "2024-06-10").Return([]*visit.Visit{v}, nil)

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), VisitCollection, nil,
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, repo.UpdateOrder(context.Background(), "visit-1", 2000))

	select {
	case docs := <-received:
		require.Len(t, docs, 1)
		assert.Equal(t, 2000, docs[0]["Order"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change notification")
	}
	inner.AssertExpectations(t)
}

func TestWatchedVisitRepository_FailedWriteDoesNotNotify(t *testing.T) {
	inner := new(mocks.MockVisitRepository)
	feed := NewChangeFeed(zap.NewNop())
	repo := NewWatchedVisitRepository(inner, feed, zap.NewNop())

	v := fixtures.NewVisitBuilder().WithID("visit-1").Build()
	inner.On("Save", mock.Anything, v).Return(errors.New("conditional check failed"))

	received := make(chan []ports.Document, 1)
	cancel, err := feed.Watch(context.Background(), VisitCollection, nil,
		func(docs []ports.Document) {
			received <- docs
		})
	require.NoError(t, err)
	defer cancel()

	require.Error(t, repo.Save(context.Background(), v))

	select {
	case <-received:
		t.Fatal("watcher notified for a write that failed")
	case <-time.After(100 * time.Millisecond):
	}
	inner.AssertExpectations(t)
}
