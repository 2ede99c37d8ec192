package discord

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TriggerFunc is invoked once per thread that needs a sync: when a
// thread first appears and whenever its newest message changes.
type TriggerFunc func(ctx context.Context, threadID string)

// Watcher polls a guild's active threads and feeds sync triggers into
// the orchestrator. Discord offers no push channel to a plain REST
// client, so thread-side change detection is polling too. Messages
// authored by the engine itself never produce a trigger; they are
// filtered here, at the event source.
type Watcher struct {
	client   *Client
	guildID  string
	interval time.Duration
	trigger  TriggerFunc
	logger   *slog.Logger

	// lastSeen maps threadID to the newest message id observed.
	lastSeen map[string]string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewWatcher creates a watcher for the given guild.
func NewWatcher(client *Client, guildID string, interval time.Duration, trigger TriggerFunc, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		client:   client,
		guildID:  guildID,
		interval: interval,
		trigger:  trigger,
		logger:   logger.With("component", "watcher"),
		lastSeen: make(map[string]string),
		stopCh:   make(chan struct{}),
	}
}

// Start runs the watch loop until the context is canceled or Stop is
// called. The first scan primes lastSeen and fires a trigger for every
// active thread, which doubles as the startup reconciliation pass.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop(ctx)
}

// Stop halts the watch loop.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// loop drives periodic scans.
func (w *Watcher) loop(ctx context.Context) {
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan fetches active threads and fires triggers for new threads and
// threads with unseen messages. A failed listing is logged and the
// scan skipped; the next tick retries.
func (w *Watcher) scan(ctx context.Context) {
	threads, err := w.client.ActiveThreads(ctx, w.guildID)
	if err != nil {
		w.logger.Warn("listing active threads failed", "error", err)
		return
	}

	for _, th := range threads {
		if th.ThreadMetadata != nil && th.ThreadMetadata.Archived {
			continue
		}

		last, known := w.lastSeen[th.ID]
		if known && last == th.LastMessageID {
			continue
		}
		w.lastSeen[th.ID] = th.LastMessageID

		if known && w.lastIsSelf(ctx, th.ID) {
			// The newest message is our own notification or sync echo;
			// triggering on it would loop the engine back on itself.
			continue
		}

		w.logger.Debug("thread trigger", "thread_id", th.ID, "new", !known)
		w.trigger(ctx, th.ID)
	}
}

// lastIsSelf reports whether the newest message in a thread was
// authored by the engine. Lookup failures count as not-self so that a
// flaky read never suppresses a legitimate sync.
func (w *Watcher) lastIsSelf(ctx context.Context, threadID string) bool {
	msgs, err := w.client.RecentMessages(ctx, threadID, 1)
	if err != nil || len(msgs) == 0 {
		return false
	}
	return msgs[0].FromSelf
}
