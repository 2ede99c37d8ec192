package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/trello-bridge/internal/links"
	"github.com/nhle/trello-bridge/internal/model"
)

// ThreadReader is the slice of the Thread System the aggregator needs.
type ThreadReader interface {
	Thread(ctx context.Context, threadID string) (*model.Thread, error)
	ThreadMessages(ctx context.Context, threadID string) ([]model.Message, error)
}

// Result is the outcome of one aggregation pass: the rendered card
// description and the ordered non-self messages it was built from.
// The same message list feeds the attachment reconciler so both
// components agree on what the thread contains.
type Result struct {
	Thread      *model.Thread
	Description string
	Messages    []model.Message
}

// Aggregator renders a thread's full message history into a single
// deterministic card description. Re-running on an unchanged thread
// reproduces byte-identical output, which makes the wholesale
// description replacement idempotent.
type Aggregator struct {
	threads ThreadReader
}

// New creates an aggregator reading from the given thread source.
func New(threads ThreadReader) *Aggregator {
	return &Aggregator{threads: threads}
}

// Build fetches the thread and its complete history and renders the
// description. Messages authored by the engine are excluded.
func (a *Aggregator) Build(ctx context.Context, threadID string) (*Result, error) {
	thread, err := a.threads.Thread(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("aggregating thread %s: %w", threadID, err)
	}
	return a.BuildFor(ctx, thread)
}

// BuildFor renders the description for an already-fetched thread.
func (a *Aggregator) BuildFor(ctx context.Context, thread *model.Thread) (*Result, error) {
	history, err := a.threads.ThreadMessages(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregating thread %s: %w", thread.ID, err)
	}

	messages := make([]model.Message, 0, len(history))
	for _, msg := range history {
		if msg.FromSelf {
			continue
		}
		messages = append(messages, msg)
	}

	return &Result{
		Thread:      thread,
		Description: RenderDescription(thread, messages),
		Messages:    messages,
	}, nil
}

// RenderDescription renders the deterministic card description from a
// thread and its ordered non-self messages: a metadata header, the
// original post, then replies grouped by calendar date in order of
// first occurrence.
func RenderDescription(thread *model.Thread, messages []model.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", thread.Name)
	fmt.Fprintf(&b, "**Thread:** %s · opened %s by %s\n",
		thread.ID, formatTime(thread.CreatedAt), thread.CreatorName)
	authors := distinctAuthors(messages)
	fmt.Fprintf(&b, "**Messages:** %d from %d participant(s)",
		len(messages), len(authors))
	if len(authors) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(authors, ", "))
	}
	b.WriteString("\n")

	if len(messages) == 0 {
		b.WriteString("\n*No messages yet.*\n")
		return b.String()
	}

	b.WriteString("\n## Original post\n\n")
	renderMessage(&b, messages[0])

	replies := messages[1:]
	if len(replies) == 0 {
		return b.String()
	}

	b.WriteString("\n## Replies\n")
	currentDate := ""
	for _, msg := range replies {
		date := msg.CreatedAt.UTC().Format("2006-01-02")
		if date != currentDate {
			currentDate = date
			fmt.Fprintf(&b, "\n### %s\n\n", date)
		} else {
			b.WriteString("\n")
		}
		renderMessage(&b, msg)
	}

	return b.String()
}

// renderMessage writes one message block: an author/timestamp header,
// then either a one-line media summary or the literal body followed by
// attachment and embed link lines. The branch is a hard either/or:
// link lines appear only alongside body text, never under a media
// summary, to keep the description free of duplicate noise.
func renderMessage(b *strings.Builder, msg model.Message) {
	fmt.Fprintf(b, "**%s** — %s\n", msg.AuthorName, formatTime(msg.CreatedAt))

	body := strings.TrimSpace(msg.Content)

	if kind, ok := links.MediaKind(body); ok {
		fmt.Fprintf(b, "*only attached %s*\n", withArticle(kind))
		return
	}
	if body == "" {
		fmt.Fprintf(b, "*only attached %s*\n", withArticle(attachmentKind(msg)))
		return
	}

	b.WriteString(body)
	b.WriteString("\n")

	for _, a := range msg.Attachments {
		fmt.Fprintf(b, "[attachment] %s: %s\n", a.Name, a.URL)
	}
	for _, e := range msg.Embeds {
		if link := EmbedLink(e); link != "" {
			fmt.Fprintf(b, "[link] %s\n", link)
		}
	}
}

// EmbedLink derives at most one link from an embed, preferring the
// image URL, then the video URL, then the generic URL.
func EmbedLink(e model.EmbedRef) string {
	switch {
	case e.ImageURL != "":
		return e.ImageURL
	case e.VideoURL != "":
		return e.VideoURL
	default:
		return e.URL
	}
}

// attachmentKind summarizes what a body-less message carries, derived
// from its first attachment or embed.
func attachmentKind(msg model.Message) string {
	if len(msg.Attachments) > 0 {
		if kind, ok := links.MediaKind(msg.Attachments[0].URL); ok {
			return kind
		}
		return "file"
	}
	if len(msg.Embeds) > 0 {
		if link := EmbedLink(msg.Embeds[0]); link != "" {
			if kind, ok := links.MediaKind(link); ok {
				return kind
			}
		}
		return "link"
	}
	return "nothing"
}

// withArticle prefixes a media kind with its indefinite article.
func withArticle(kind string) string {
	switch kind {
	case "media", "nothing":
		return kind
	case "image":
		return "an " + kind
	default:
		return "a " + kind
	}
}

// distinctAuthors returns author display names in order of first
// appearance.
func distinctAuthors(messages []model.Message) []string {
	seen := make(map[string]bool)
	var authors []string
	for _, msg := range messages {
		if seen[msg.AuthorID] {
			continue
		}
		seen[msg.AuthorID] = true
		authors = append(authors, msg.AuthorName)
	}
	return authors
}

// formatTime renders a timestamp in the fixed layout used throughout
// the description. Everything is UTC so output never depends on the
// host timezone.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
