package aggregate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/trello-bridge/internal/model"
)

// fakeThreads is an in-memory ThreadReader.
type fakeThreads struct {
	thread   *model.Thread
	messages []model.Message
}

func (f *fakeThreads) Thread(_ context.Context, _ string) (*model.Thread, error) {
	return f.thread, nil
}

func (f *fakeThreads) ThreadMessages(_ context.Context, _ string) ([]model.Message, error) {
	return f.messages, nil
}

func testThread() *model.Thread {
	return &model.Thread{
		ID:          "thread-1",
		Name:        "Bug 42",
		CreatorID:   "u1",
		CreatorName: "ana",
		CreatedAt:   time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
	}
}

func msg(id, author, body string, at time.Time) model.Message {
	return model.Message{
		ID:         id,
		AuthorID:   "u-" + author,
		AuthorName: author,
		Content:    body,
		CreatedAt:  at,
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	base := time.Date(2026, 1, 2, 15, 10, 0, 0, time.UTC)
	threads := &fakeThreads{
		thread: testThread(),
		messages: []model.Message{
			msg("m1", "ana", "original post body", base),
			msg("m2", "bob", "first reply", base.Add(time.Hour)),
			msg("m3", "ana", "second reply", base.Add(25*time.Hour)),
		},
	}
	agg := New(threads)

	first, err := agg.Build(context.Background(), "thread-1")
	require.NoError(t, err)
	second, err := agg.Build(context.Background(), "thread-1")
	require.NoError(t, err)

	assert.Equal(t, first.Description, second.Description,
		"re-running aggregation on an unchanged thread must be byte-identical")
}

func TestBuildExcludesSelfMessages(t *testing.T) {
	base := time.Date(2026, 1, 2, 15, 10, 0, 0, time.UTC)
	self := msg("m2", "bridge", "notification echo", base.Add(time.Minute))
	self.FromSelf = true

	threads := &fakeThreads{
		thread: testThread(),
		messages: []model.Message{
			msg("m1", "ana", "original", base),
			self,
			msg("m3", "bob", "fixed!", base.Add(2*time.Minute)),
		},
	}

	result, err := New(threads).Build(context.Background(), "thread-1")
	require.NoError(t, err)

	assert.Len(t, result.Messages, 2)
	assert.NotContains(t, result.Description, "notification echo")
	assert.Contains(t, result.Description, "fixed!")
}

func TestRenderDescriptionLayout(t *testing.T) {
	base := time.Date(2026, 1, 2, 15, 10, 0, 0, time.UTC)
	messages := []model.Message{
		msg("m1", "ana", "original post", base),
		msg("m2", "bob", "same-day reply", base.Add(time.Hour)),
		msg("m3", "ana", "next-day reply", base.Add(26*time.Hour)),
	}

	desc := RenderDescription(testThread(), messages)

	assert.Contains(t, desc, "# Bug 42")
	assert.Contains(t, desc, "**Thread:** thread-1 · opened 2026-01-02 15:04 UTC by ana")
	assert.Contains(t, desc, "**Messages:** 3 from 2 participant(s) (ana, bob)")
	assert.Contains(t, desc, "## Original post")
	assert.Contains(t, desc, "## Replies")
	assert.Contains(t, desc, "### 2026-01-02")
	assert.Contains(t, desc, "### 2026-01-03")

	// Date groups appear in chronological order of first occurrence.
	assert.Less(t,
		strings.Index(desc, "### 2026-01-02"),
		strings.Index(desc, "### 2026-01-03"),
	)
}

func TestRenderMediaOnlyMessage(t *testing.T) {
	base := time.Date(2026, 1, 2, 15, 10, 0, 0, time.UTC)
	messages := []model.Message{
		msg("m1", "ana", "original", base),
		msg("m2", "bob", "https://cdn.example.com/clip.gif", base.Add(time.Hour)),
	}

	desc := RenderDescription(testThread(), messages)

	assert.Contains(t, desc, "*only attached a GIF*")
	assert.NotContains(t, desc, "https://cdn.example.com/clip.gif",
		"a bare media URL must not appear as literal body text")
}

func TestRenderBodyWithLinks(t *testing.T) {
	base := time.Date(2026, 1, 2, 15, 10, 0, 0, time.UTC)
	withFiles := msg("m2", "bob", "here is the log", base.Add(time.Hour))
	withFiles.Attachments = []model.AttachmentRef{
		{URL: "https://cdn.example.com/log.txt", Name: "log.txt"},
	}
	withFiles.Embeds = []model.EmbedRef{
		{URL: "https://example.com/page", ImageURL: "https://example.com/shot.png"},
	}

	messages := []model.Message{
		msg("m1", "ana", "original", base),
		withFiles,
	}

	desc := RenderDescription(testThread(), messages)

	assert.Contains(t, desc, "here is the log")
	assert.Contains(t, desc, "[attachment] log.txt: https://cdn.example.com/log.txt")
	// Embed link prefers the image URL over the generic URL.
	assert.Contains(t, desc, "[link] https://example.com/shot.png")
	assert.NotContains(t, desc, "[link] https://example.com/page")
}

func TestEmbedLinkPreference(t *testing.T) {
	assert.Equal(t, "img", EmbedLink(model.EmbedRef{ImageURL: "img", VideoURL: "vid", URL: "url"}))
	assert.Equal(t, "vid", EmbedLink(model.EmbedRef{VideoURL: "vid", URL: "url"}))
	assert.Equal(t, "url", EmbedLink(model.EmbedRef{URL: "url"}))
	assert.Equal(t, "", EmbedLink(model.EmbedRef{}))
}
