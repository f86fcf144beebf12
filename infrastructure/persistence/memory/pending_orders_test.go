package memory

import (
	"context"
	"testing"

	"ccivisits-backend/application/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrderQueue_LaterCommitReplacesSameDay(t *testing.T) {
	ctx := context.Background()
	q := NewPendingOrderQueue()

	first := ports.OrderCommit{Day: "2024-06-10", UserID: "u1", Orders: map[string]int{"a": 1000}}
	second := ports.OrderCommit{Day: "2024-06-10", UserID: "u1", Orders: map[string]int{"a": 2000, "b": 1000}}

	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	drained, err := q.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, drained, 1)
	assert.Equal(t, second.Orders, drained[0].Orders)

	n, _ = q.Len(ctx)
	assert.Equal(t, 0, n)
}

func TestPendingOrderQueue_DrainPreservesEnqueueOrder(t *testing.T) {
	ctx := context.Background()
	q := NewPendingOrderQueue()

	days := []string{"2024-06-10", "2024-06-11", "2024-06-12"}
	for _, day := range days {
		require.NoError(t, q.Enqueue(ctx, ports.OrderCommit{Day: day}))
	}

	drained, err := q.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, drained, 3)
	for i, day := range days {
		assert.Equal(t, day, drained[i].Day)
	}
}

func TestPendingOrderQueue_RequeueLosesToNewerCommit(t *testing.T) {
	ctx := context.Background()
	q := NewPendingOrderQueue()

	newer := ports.OrderCommit{Day: "2024-06-10", Orders: map[string]int{"a": 3000}}
	require.NoError(t, q.Enqueue(ctx, newer))

	stale := ports.OrderCommit{Day: "2024-06-10", Orders: map[string]int{"a": 1000}}
	require.NoError(t, q.Requeue(ctx, stale))

	drained, err := q.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, drained, 1)
	assert.Equal(t, newer.Orders, drained[0].Orders)
}

func TestConnectivityMonitor_RestoreEdgeFiresCallbacks(t *testing.T) {
	m := NewConnectivityMonitor()
	assert.True(t, m.Online())

	fired := 0
	m.OnRestore(func() { fired++ })

	// Already online, no edge.
	m.SetOnline(true)
	assert.Equal(t, 0, fired)

	m.SetOnline(false)
	assert.False(t, m.Online())
	assert.Equal(t, 0, fired)

	m.SetOnline(true)
	assert.Equal(t, 1, fired)
}
