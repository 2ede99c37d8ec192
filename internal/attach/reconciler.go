package attach

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/nhle/trello-bridge/internal/aggregate"
	"github.com/nhle/trello-bridge/internal/links"
	"github.com/nhle/trello-bridge/internal/model"
)

// CardAttachments is the slice of the Board System the reconciler
// needs. The remote attachment list is authoritative and fetched fresh
// on every run; nothing is cached across runs.
type CardAttachments interface {
	ListAttachments(ctx context.Context, cardID string) ([]model.CardAttachment, error)
	AddAttachment(ctx context.Context, cardID, url, name string) error
}

// Reconciler adds thread attachments the card does not have yet. It
// never removes an attachment, and it never adds the same normalized
// base URL or display name twice, within a pass or across passes.
// Matching by name alone is a deliberate false-positive-prone
// heuristic: a distinct file that shares a display name is suppressed.
type Reconciler struct {
	cards  CardAttachments
	logger *slog.Logger
}

// New creates a reconciler writing through the given card API.
func New(cards CardAttachments, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		cards:  cards,
		logger: logger.With("component", "reconciler"),
	}
}

// candidate is one attachment link discovered in the thread.
type candidate struct {
	url  string
	name string
}

// Reconcile walks the message list in order, collects candidate links
// (uploaded files, then embed-derived links, then bare URLs in body
// text), and issues one add call per unseen candidate. A failed add is
// logged and skipped; the pass continues. Returns the number of
// attachments added.
func (r *Reconciler) Reconcile(ctx context.Context, cardID string, messages []model.Message) (int, error) {
	existing, err := r.cards.ListAttachments(ctx, cardID)
	if err != nil {
		return 0, err
	}

	seenURLs := make(map[string]bool)
	seenNames := make(map[string]bool)
	for _, a := range existing {
		seenURLs[links.NormalizeBase(a.URL)] = true
		if a.Name != "" {
			seenNames[strings.ToLower(a.Name)] = true
		}
	}

	added := 0
	for _, msg := range messages {
		for _, cand := range candidates(msg) {
			base := links.NormalizeBase(cand.url)
			name := strings.ToLower(cand.name)
			if seenURLs[base] || (name != "" && seenNames[name]) {
				continue
			}

			if err := r.cards.AddAttachment(ctx, cardID, cand.url, cand.name); err != nil {
				r.logger.Warn("adding attachment failed",
					"card_id", cardID, "url", cand.url, "error", err)
				continue
			}

			seenURLs[base] = true
			if name != "" {
				seenNames[name] = true
			}
			added++
		}
	}

	return added, nil
}

// candidates lists a message's attachment links in discovery order:
// uploaded files first, then one link per embed, then bare URLs found
// in the body text.
func candidates(msg model.Message) []candidate {
	var out []candidate

	for _, a := range msg.Attachments {
		out = append(out, candidate{url: a.URL, name: a.Name})
	}

	for _, e := range msg.Embeds {
		if link := aggregate.EmbedLink(e); link != "" {
			out = append(out, candidate{url: link, name: nameFor(link, e.Title)})
		}
	}

	for _, raw := range links.ExtractURLs(msg.Content) {
		out = append(out, candidate{url: raw, name: nameFor(raw, "")})
	}

	return out
}

// nameFor picks a display name for a link: an explicit title if
// given, otherwise the URL's final path element.
func nameFor(rawURL, title string) string {
	if title != "" {
		return title
	}
	base := path.Base(links.NormalizeBase(rawURL))
	if base == "." || base == "/" {
		return rawURL
	}
	return base
}
