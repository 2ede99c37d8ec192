package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/tests/testutil"
)

func TestSaveAndGetMappings(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	m := model.Mapping{
		ThreadID:  "thread-1",
		CardID:    "card-1",
		CardName:  "[Discord] Bug 42 - by ana",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveMapping(ctx, m))

	// Saving the same pair twice is a no-op.
	require.NoError(t, s.SaveMapping(ctx, m))

	mappings, err := s.GetMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "thread-1", mappings[0].ThreadID)
	assert.Equal(t, "card-1", mappings[0].CardID)
	assert.Equal(t, "[Discord] Bug 42 - by ana", mappings[0].CardName)
}

func TestProcessedActions(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("action-%d", i)
		require.NoError(t, s.MarkActionProcessed(ctx, id, "commentCard", "card-1"))
		// Distinct processed_at values keep the recency ordering stable.
		time.Sleep(2 * time.Millisecond)
	}

	// Marking the same id twice is a no-op.
	require.NoError(t, s.MarkActionProcessed(ctx, "action-0", "commentCard", "card-1"))

	ids, err := s.RecentProcessedActionIDs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, "action-4", ids[0], "newest first")

	require.NoError(t, s.PruneProcessedActions(ctx, 2))
	ids, err = s.RecentProcessedActionIDs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
