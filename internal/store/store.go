package store

import (
	"context"

	"github.com/nhle/trello-bridge/internal/model"
)

// Store defines the persistence interface for bridge state: identity
// mappings and processed change-action ids. Persistence is a
// durability supplement; the in-memory registry and dedupe sets remain
// the hot path.
type Store interface {
	// === Identity mappings ===

	SaveMapping(ctx context.Context, m model.Mapping) error
	GetMappings(ctx context.Context) ([]model.Mapping, error)

	// === Processed change actions ===

	MarkActionProcessed(ctx context.Context, actionID, actionType, cardID string) error
	RecentProcessedActionIDs(ctx context.Context, limit int) ([]string, error)
	PruneProcessedActions(ctx context.Context, keep int) error

	Close() error
}
