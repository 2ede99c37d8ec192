package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/trello-bridge/internal/aggregate"
	"github.com/nhle/trello-bridge/internal/attach"
	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/registry"
)

// placeholderDescription seeds a freshly created card until the first
// aggregation pass replaces it.
const placeholderDescription = "*Synchronizing thread...*"

// creationWait bounds how long a trigger waits for another in-flight
// creation of the same thread's card before giving up.
const creationWait = 30 * time.Second

// BoardAPI is the slice of the Board System the orchestrator needs.
type BoardAPI interface {
	SearchCards(ctx context.Context, boardID string) ([]model.Card, error)
	CreateCard(ctx context.Context, listID, name, desc string) (*model.Card, error)
	UpdateCardDescription(ctx context.Context, cardID, desc string) error
}

// CardName is the deterministic naming convention binding a thread to
// its card. It is both how new cards are named and how pre-existing
// cards are discovered.
func CardName(thread *model.Thread) string {
	return fmt.Sprintf("[Discord] %s - by %s", thread.Name, thread.CreatorName)
}

// Orchestrator is the top-level per-thread sync operation: ensure a
// card exists (find by naming convention or create), then drive the
// aggregator and the reconciler to bring it up to date. Concurrent
// triggers for the same thread are serialized by a per-thread
// completion channel; triggers for different threads run freely.
type Orchestrator struct {
	reg     *registry.Registry
	board   BoardAPI
	threads aggregate.ThreadReader
	agg     *aggregate.Aggregator
	rec     *attach.Reconciler
	boardID string
	listID  string
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// New creates an orchestrator. boardID locates pre-existing cards;
// listID receives newly created ones.
func New(
	reg *registry.Registry,
	board BoardAPI,
	threads aggregate.ThreadReader,
	agg *aggregate.Aggregator,
	rec *attach.Reconciler,
	boardID, listID string,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		reg:      reg,
		board:    board,
		threads:  threads,
		agg:      agg,
		rec:      rec,
		boardID:  boardID,
		listID:   listID,
		logger:   logger.With("component", "orchestrator"),
		inflight: make(map[string]chan struct{}),
	}
}

// SyncThread is the per-trigger entry point. Failures propagate to the
// caller and abort this trigger; no partial mapping is ever published,
// so a later trigger retries from scratch.
func (o *Orchestrator) SyncThread(ctx context.Context, threadID string) error {
	logger := o.logger.With("thread_id", threadID, "run_id", uuid.New().String())

	cardID, err := o.ensureCard(ctx, threadID, logger)
	if err != nil {
		return err
	}
	return o.syncCard(ctx, threadID, cardID, logger)
}

// ensureCard resolves or establishes the thread's card binding.
func (o *Orchestrator) ensureCard(ctx context.Context, threadID string, logger *slog.Logger) (string, error) {
	if cardID, ok := o.reg.Resolve(threadID); ok {
		return cardID, nil
	}

	o.mu.Lock()
	if done, ok := o.inflight[threadID]; ok {
		o.mu.Unlock()
		return o.awaitCreation(ctx, threadID, done)
	}
	done := make(chan struct{})
	o.inflight[threadID] = done
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inflight, threadID)
		o.mu.Unlock()
		close(done)
	}()

	// Double-check under the guard: another trigger may have bound the
	// thread between our Resolve and acquiring the guard.
	if cardID, ok := o.reg.Resolve(threadID); ok {
		return cardID, nil
	}

	thread, err := o.threads.Thread(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("syncing thread %s: %w", threadID, err)
	}

	card, err := o.findOrCreateCard(ctx, thread, logger)
	if err != nil {
		return "", err
	}

	if err := o.reg.Bind(ctx, threadID, card.ID, card.Name); err != nil {
		return "", fmt.Errorf("binding thread %s: %w", threadID, err)
	}
	return card.ID, nil
}

// awaitCreation waits for another trigger's in-flight card creation to
// finish, then uses the published mapping. If the other trigger failed
// and published nothing, this trigger fails too and a later one
// retries from scratch.
func (o *Orchestrator) awaitCreation(ctx context.Context, threadID string, done <-chan struct{}) (string, error) {
	select {
	case <-done:
	case <-time.After(creationWait):
		return "", fmt.Errorf("timed out waiting for card creation of thread %s", threadID)
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if cardID, ok := o.reg.Resolve(threadID); ok {
		return cardID, nil
	}
	return "", fmt.Errorf("concurrent card creation for thread %s failed", threadID)
}

// findOrCreateCard searches the board for a card matching the naming
// convention and creates one at the top of the configured list when
// none exists.
func (o *Orchestrator) findOrCreateCard(ctx context.Context, thread *model.Thread, logger *slog.Logger) (*model.Card, error) {
	name := CardName(thread)

	cards, err := o.board.SearchCards(ctx, o.boardID)
	if err != nil {
		return nil, fmt.Errorf("searching card for thread %s: %w", thread.ID, err)
	}
	for _, card := range cards {
		if card.Name == name {
			logger.Info("found existing card", "card_id", card.ID, "card_name", name)
			found := card
			return &found, nil
		}
	}

	card, err := o.board.CreateCard(ctx, o.listID, name, placeholderDescription)
	if err != nil {
		return nil, fmt.Errorf("creating card for thread %s: %w", thread.ID, err)
	}
	logger.Info("created card", "card_id", card.ID, "card_name", name)
	return card, nil
}

// syncCard re-runs aggregation and attachment reconciliation against
// the bound card. A failed attachment pass does not undo the
// description update; each stage reports independently.
func (o *Orchestrator) syncCard(ctx context.Context, threadID, cardID string, logger *slog.Logger) error {
	result, err := o.agg.Build(ctx, threadID)
	if err != nil {
		return err
	}

	if err := o.board.UpdateCardDescription(ctx, cardID, result.Description); err != nil {
		return fmt.Errorf("syncing thread %s: %w", threadID, err)
	}

	added, err := o.rec.Reconcile(ctx, cardID, result.Messages)
	if err != nil {
		return fmt.Errorf("reconciling attachments of thread %s: %w", threadID, err)
	}

	logger.Info("thread synced",
		"card_id", cardID,
		"messages", len(result.Messages),
		"attachments_added", added)
	return nil
}
