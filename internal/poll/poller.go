package poll

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nhle/trello-bridge/internal/model"
	"github.com/nhle/trello-bridge/internal/store"
	"github.com/nhle/trello-bridge/internal/trello"
)

// processedCap bounds the in-memory processed-action-id set.
const processedCap = 2000

// hashCap bounds the per-card content-hash cache.
const hashCap = 512

// seedScanLimit is how many recent messages per thread the startup
// rescan inspects for engine-authored notifications.
const seedScanLimit = 50

// BoardSource is the slice of the Board System the poller reads.
type BoardSource interface {
	BoardActions(ctx context.Context, boardID string, since time.Time) ([]trello.Action, error)
}

// ThreadNotifier is the slice of the Thread System the poller writes.
type ThreadNotifier interface {
	PostNotification(ctx context.Context, threadID string, n model.Notification) error
	RecentMessages(ctx context.Context, threadID string, limit int) ([]model.Message, error)
}

// Resolver maps cards back to threads.
type Resolver interface {
	ResolveCard(cardID string) (string, bool)
	Snapshot() []model.Mapping
}

// Poller is the timer-driven change detection loop. Each tick fetches
// board actions since the checkpoint, drops already-processed ids,
// replays the rest in chronological order, and posts gated, deduped
// notifications to the matching threads. The checkpoint only advances
// on a fully successful fetch; repeated failures feed the backoff
// controller.
type Poller struct {
	board    BoardSource
	notifier ThreadNotifier
	resolver Resolver
	persist  store.Store

	boardID  string
	cfg      model.NotifyConfig
	interval time.Duration
	lookback time.Duration

	backoff   *Backoff
	processed *BoundedSet
	hashes    *HashCache
	limiter   *rate.Limiter

	checkpoint time.Time
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// Options configures a Poller.
type Options struct {
	BoardID          string
	Notify           model.NotifyConfig
	Interval         time.Duration
	Lookback         time.Duration
	BackoffThreshold int
	DeliveryDelay    time.Duration

	// Persist, when non-nil, records processed action ids durably.
	Persist store.Store
}

// New creates a poller. It does not start ticking until Run.
func New(board BoardSource, notifier ThreadNotifier, resolver Resolver, opts Options, logger *slog.Logger) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	delay := opts.DeliveryDelay
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Poller{
		board:     board,
		notifier:  notifier,
		resolver:  resolver,
		persist:   opts.Persist,
		boardID:   opts.BoardID,
		cfg:       opts.Notify,
		interval:  interval,
		lookback:  opts.Lookback,
		backoff:   NewBackoff(opts.BackoffThreshold),
		processed: NewBoundedSet(processedCap),
		hashes:    NewHashCache(hashCap),
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger.With("component", "poller"),
		stopCh:    make(chan struct{}),
	}
}

// Seed prepares the poller for its first tick: the checkpoint starts a
// bounded lookback behind now (not further, to avoid a restart storm
// of historical notifications), the processed set is warmed from the
// store, and the content-hash cache is rebuilt by scanning each bound
// thread for engine-authored notifications.
func (p *Poller) Seed(ctx context.Context) {
	p.checkpoint = time.Now().Add(-p.lookback)

	if p.persist != nil {
		ids, err := p.persist.RecentProcessedActionIDs(ctx, processedCap)
		if err != nil {
			p.logger.Warn("loading processed action ids failed", "error", err)
		}
		// Rows arrive newest first; insert oldest first so eviction
		// order matches processing order.
		for i := len(ids) - 1; i >= 0; i-- {
			p.processed.Add(ids[i])
		}
		if err := p.persist.PruneProcessedActions(ctx, processedCap); err != nil {
			p.logger.Warn("pruning processed actions failed", "error", err)
		}
	}

	seeded := 0
	for _, m := range p.resolver.Snapshot() {
		msgs, err := p.notifier.RecentMessages(ctx, m.ThreadID, seedScanLimit)
		if err != nil {
			p.logger.Warn("startup rescan failed",
				"thread_id", m.ThreadID, "error", err)
			continue
		}
		seeded += p.hashes.SeedFromMessages(m.CardID, msgs)
	}

	p.logger.Info("poller seeded",
		"checkpoint", p.checkpoint,
		"processed_ids", p.processed.Len(),
		"seeded_hashes", seeded)
}

// Run drives the tick loop until the context is canceled or Stop is
// called.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if doubled := p.Tick(ctx); doubled {
				ticker.Reset(p.interval)
			}
		}
	}
}

// Stop halts the tick loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Interval returns the current tick interval (doubled after repeated
// failures, never restored).
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Tick performs one poll cycle and reports whether the interval just
// doubled. A failed fetch leaves the checkpoint untouched so the next
// tick retries the same window.
func (p *Poller) Tick(ctx context.Context) bool {
	tickStart := time.Now()

	actions, err := p.board.BoardActions(ctx, p.boardID, p.checkpoint)
	if err != nil {
		p.logger.Warn("poll tick failed",
			"error", err, "failures", p.backoff.Failures()+1)
		if p.backoff.Failure() {
			p.interval *= 2
			p.logger.Warn("doubling poll interval", "interval", p.interval)
			return true
		}
		return false
	}
	p.backoff.Success()

	fresh := actions[:0:0]
	for _, a := range actions {
		if p.processed.Contains(a.ID) {
			continue
		}
		fresh = append(fresh, a)
	}

	// Deliver in the order the changes happened, never in API
	// response order. Ties break on id so replay is deterministic.
	sort.SliceStable(fresh, func(i, j int) bool {
		if !fresh[i].Date.Equal(fresh[j].Date) {
			return fresh[i].Date.Before(fresh[j].Date)
		}
		return fresh[i].ID < fresh[j].ID
	})

	for _, a := range fresh {
		p.handleAction(ctx, a)
	}

	p.checkpoint = tickStart
	return false
}

// handleAction processes one action: resolve its thread, gate and
// render the notification, dedupe by content hash, and deliver. Every
// failure here is logged and skipped; one bad action never stops the
// tick.
func (p *Poller) handleAction(ctx context.Context, a trello.Action) {
	cardID, cardName, ok := CardRef(a)
	if !ok {
		p.markProcessed(ctx, a, "")
		return
	}

	threadID, bound := p.resolver.ResolveCard(cardID)
	if !bound {
		// A card with no bound thread is expected on shared boards.
		p.logger.Debug("no thread for card", "card_id", cardID, "action_id", a.ID)
		p.markProcessed(ctx, a, cardID)
		return
	}

	change := Classify(a)
	if !Allowed(change, p.cfg) {
		p.markProcessed(ctx, a, cardID)
		return
	}

	n, ok := Render(change, cardName, a.Date)
	if !ok {
		p.markProcessed(ctx, a, cardID)
		return
	}

	hash := ContentHash(n.Title, n.Description)
	if p.hashes.Seen(cardID, hash) {
		p.logger.Debug("duplicate notification suppressed",
			"card_id", cardID, "action_id", a.ID)
		p.markProcessed(ctx, a, cardID)
		return
	}

	// Courtesy pacing between deliveries.
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}

	if err := p.notifier.PostNotification(ctx, threadID, n); err != nil {
		// Not marked processed: if the action reappears inside the
		// checkpoint window, delivery is retried.
		p.logger.Warn("delivering notification failed",
			"thread_id", threadID, "action_id", a.ID, "error", err)
		return
	}

	p.markProcessed(ctx, a, cardID)
	p.hashes.Record(cardID, hash)
	p.logger.Info("notification delivered",
		"thread_id", threadID, "action_id", a.ID, "title", n.Title)
}

// markProcessed records an action id in the in-memory set and, when a
// store is attached, durably.
func (p *Poller) markProcessed(ctx context.Context, a trello.Action, cardID string) {
	p.processed.Add(a.ID)
	if p.persist == nil {
		return
	}
	if err := p.persist.MarkActionProcessed(ctx, a.ID, a.Type, cardID); err != nil {
		p.logger.Warn("persisting processed action failed",
			"action_id", a.ID, "error", err)
	}
}
