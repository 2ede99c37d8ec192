package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndResolveBothDirections(t *testing.T) {
	reg := New(nil)
	ctx := context.Background()

	require.NoError(t, reg.Bind(ctx, "thread-1", "card-1", "[Discord] Bug 42 - by ana"))

	cardID, ok := reg.Resolve("thread-1")
	assert.True(t, ok)
	assert.Equal(t, "card-1", cardID)

	threadID, ok := reg.ResolveCard("card-1")
	assert.True(t, ok)
	assert.Equal(t, "thread-1", threadID)

	_, ok = reg.Resolve("thread-unknown")
	assert.False(t, ok)
	_, ok = reg.ResolveCard("card-unknown")
	assert.False(t, ok)
}

func TestBindRejectsConflicts(t *testing.T) {
	reg := New(nil)
	ctx := context.Background()

	require.NoError(t, reg.Bind(ctx, "thread-1", "card-1", ""))

	// Same pair again is a no-op.
	require.NoError(t, reg.Bind(ctx, "thread-1", "card-1", ""))
	assert.Equal(t, 1, reg.Len())

	// No thread resolves to two different cards.
	assert.Error(t, reg.Bind(ctx, "thread-1", "card-2", ""))

	// No card resolves to two different threads.
	assert.Error(t, reg.Bind(ctx, "thread-2", "card-1", ""))

	cardID, _ := reg.Resolve("thread-1")
	assert.Equal(t, "card-1", cardID)
	assert.Equal(t, 1, reg.Len())
}

func TestSnapshotPreservesBindingOrder(t *testing.T) {
	reg := New(nil)
	ctx := context.Background()

	require.NoError(t, reg.Bind(ctx, "t1", "c1", ""))
	require.NoError(t, reg.Bind(ctx, "t2", "c2", ""))
	require.NoError(t, reg.Bind(ctx, "t3", "c3", ""))

	snap := reg.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "t1", snap[0].ThreadID)
	assert.Equal(t, "t3", snap[2].ThreadID)
}
