package ordering

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragOver_MovesItemToTargetIndex(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c", "d"})

	require.NoError(t, l.BeginDrag("d"))
	require.NoError(t, l.DragOver("b"))

	assert.Equal(t, []string{"a", "d", "b", "c"}, l.IDs())

	// Drop only clears the dragging pointer; position is already committed.
	l.Drop()
	assert.Empty(t, l.Dragging())
	assert.Equal(t, []string{"a", "d", "b", "c"}, l.IDs())
}

func TestDragOver_DownwardLandsAtTargetIndex(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c", "d"})

	// Dragging downward: a ends up at c's index, not after it.
	require.NoError(t, l.BeginDrag("a"))
	require.NoError(t, l.DragOver("c"))

	assert.Equal(t, []string{"b", "a", "c", "d"}, l.IDs())
}

func TestDragOver_SameIDIsNoop(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c"})

	require.NoError(t, l.BeginDrag("b"))
	require.NoError(t, l.DragOver("b"))

	assert.Equal(t, []string{"a", "b", "c"}, l.IDs())
}

func TestDragOver_WithoutBeginDragIsNoop(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b"})

	require.NoError(t, l.DragOver("a"))
	assert.Equal(t, []string{"a", "b"}, l.IDs())
}

func TestBeginDrag_UnknownID(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a"})
	assert.ErrorIs(t, l.BeginDrag("nope"), ErrUnknownID)
}

// Any sequence of drag operations must keep the list a permutation of the
// original IDs: nothing duplicated, nothing lost.
func TestDragOver_PreservesPermutation(t *testing.T) {
	ids := []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7"}
	l := NewWorkingList("2026-03-02", ids)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		src := ids[rng.Intn(len(ids))]
		dst := ids[rng.Intn(len(ids))]
		require.NoError(t, l.BeginDrag(src))
		require.NoError(t, l.DragOver(dst))
		l.Drop()
	}

	got := l.IDs()
	require.Len(t, got, len(ids))
	seen := make(map[string]bool, len(got))
	for _, id := range got {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id], "lost id %s", id)
	}
}

func TestFinalOrders_SpacedByThousand(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c"})

	orders := l.FinalOrders()

	assert.Equal(t, map[string]int{"a": 1000, "b": 2000, "c": 3000}, orders)
}

func TestChangedOrders_SkipsUnchangedAbsoluteValues(t *testing.T) {
	// Day has A(1000), B(2000), C(3000); user drags C between A and B.
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c"})
	require.NoError(t, l.BeginDrag("c"))
	require.NoError(t, l.DragOver("b"))
	l.Drop()

	persisted := map[string]int{"a": 1000, "b": 2000, "c": 3000}
	changed := ChangedOrders(l.FinalOrders(), persisted)

	// Renumbering yields A=1000 (unchanged), C=2000, B=3000.
	assert.Equal(t, map[string]int{"c": 2000, "b": 3000}, changed)
}

func TestChangedOrders_IdempotentCommit(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"a", "b", "c"})
	final := l.FinalOrders()

	// First commit persists everything; a second commit with no drag in
	// between must issue zero writes.
	changed := ChangedOrders(final, final)
	assert.Empty(t, changed)
}

func TestFinalOrders_StrictlyIncreasing(t *testing.T) {
	l := NewWorkingList("2026-03-02", []string{"x", "y", "z", "w"})
	require.NoError(t, l.BeginDrag("w"))
	require.NoError(t, l.DragOver("x"))
	l.Drop()

	orders := l.FinalOrders()
	ids := l.IDs()
	for i := 1; i < len(ids); i++ {
		assert.Less(t, orders[ids[i-1]], orders[ids[i]])
	}
}
