package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/store"
)

// Registry is the bidirectional thread↔card identity mapping and the
// single source of truth for "does this thread already have a card".
// Mappings are append-only for the process lifetime: there is no
// removal operation. Both directions are updated under one lock, so
// no observer ever sees a half-bound pair.
type Registry struct {
	mu           sync.RWMutex
	threadToCard map[string]string
	cardToThread map[string]string
	mappings     []model.Mapping

	// persist, when non-nil, receives a write-through copy of every
	// new binding so mappings survive restarts.
	persist store.Store
}

// New creates an empty registry. persist may be nil.
func New(persist store.Store) *Registry {
	return &Registry{
		threadToCard: make(map[string]string),
		cardToThread: make(map[string]string),
		persist:      persist,
	}
}

// Load seeds the registry from persisted mappings. Conflicting rows
// are impossible by schema; a duplicate load is a no-op.
func (r *Registry) Load(ctx context.Context) error {
	if r.persist == nil {
		return nil
	}

	mappings, err := r.persist.GetMappings(ctx)
	if err != nil {
		return fmt.Errorf("loading mappings: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range mappings {
		if _, ok := r.threadToCard[m.ThreadID]; ok {
			continue
		}
		r.threadToCard[m.ThreadID] = m.CardID
		r.cardToThread[m.CardID] = m.ThreadID
		r.mappings = append(r.mappings, m)
	}
	return nil
}

// Resolve returns the card bound to a thread, if any.
func (r *Registry) Resolve(threadID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cardID, ok := r.threadToCard[threadID]
	return cardID, ok
}

// ResolveCard returns the thread bound to a card, if any. A card with
// no bound thread is not an error condition; callers skip it.
func (r *Registry) ResolveCard(cardID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	threadID, ok := r.cardToThread[cardID]
	return threadID, ok
}

// Bind records a new thread↔card pair, updating both directions
// atomically. Binding either side to a different partner than an
// existing binding is an error; re-binding the same pair is a no-op.
func (r *Registry) Bind(ctx context.Context, threadID, cardID, cardName string) error {
	r.mu.Lock()

	if existing, ok := r.threadToCard[threadID]; ok {
		r.mu.Unlock()
		if existing == cardID {
			return nil
		}
		return fmt.Errorf("thread %s already bound to card %s", threadID, existing)
	}
	if existing, ok := r.cardToThread[cardID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("card %s already bound to thread %s", cardID, existing)
	}

	m := model.Mapping{
		ThreadID:  threadID,
		CardID:    cardID,
		CardName:  cardName,
		CreatedAt: time.Now(),
	}
	r.threadToCard[threadID] = cardID
	r.cardToThread[cardID] = threadID
	r.mappings = append(r.mappings, m)
	r.mu.Unlock()

	if r.persist != nil {
		if err := r.persist.SaveMapping(ctx, m); err != nil {
			// The in-memory binding stands; persistence is best-effort.
			return fmt.Errorf("persisting mapping %s→%s: %w", threadID, cardID, err)
		}
	}
	return nil
}

// Snapshot returns a copy of all current mappings in binding order.
func (r *Registry) Snapshot() []model.Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Mapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}

// Len returns the number of bound pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.threadToCard)
}
