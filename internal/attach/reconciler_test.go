package attach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/trello-bridge/internal/model"
)

// fakeCards records attachment adds and serves the accumulated list
// back on the next ListAttachments call, like the real Board System.
type fakeCards struct {
	attachments []model.CardAttachment
	addCalls    []string
	failURL     string
}

func (f *fakeCards) ListAttachments(_ context.Context, _ string) ([]model.CardAttachment, error) {
	out := make([]model.CardAttachment, len(f.attachments))
	copy(out, f.attachments)
	return out, nil
}

func (f *fakeCards) AddAttachment(_ context.Context, _, url, name string) error {
	if url == f.failURL {
		return fmt.Errorf("simulated add failure")
	}
	f.addCalls = append(f.addCalls, url)
	f.attachments = append(f.attachments, model.CardAttachment{URL: url, Name: name})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fileMsg(id string, urls ...string) model.Message {
	m := model.Message{ID: id, AuthorID: "u1", AuthorName: "ana", Content: "see files", CreatedAt: time.Now()}
	for _, u := range urls {
		m.Attachments = append(m.Attachments, model.AttachmentRef{URL: u, Name: nameOf(u)})
	}
	return m
}

func nameOf(u string) string {
	for i := len(u) - 1; i >= 0; i-- {
		if u[i] == '/' {
			return u[i+1:]
		}
	}
	return u
}

func TestReconcileAddsUnseenOnly(t *testing.T) {
	cards := &fakeCards{
		attachments: []model.CardAttachment{
			{URL: "https://cdn.example.com/existing.png?sig=old", Name: "existing.png"},
		},
	}
	rec := New(cards, testLogger())

	messages := []model.Message{
		// Same base URL as the pre-existing attachment, different query.
		fileMsg("m1", "https://cdn.example.com/existing.png?sig=new"),
		fileMsg("m2", "https://cdn.example.com/fresh.gif"),
	}

	added, err := rec.Reconcile(context.Background(), "card-1", messages)
	require.NoError(t, err)

	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"https://cdn.example.com/fresh.gif"}, cards.addCalls)
}

func TestReconcileIsIdempotentAcrossPasses(t *testing.T) {
	cards := &fakeCards{}
	rec := New(cards, testLogger())
	messages := []model.Message{
		fileMsg("m1", "https://cdn.example.com/a.png", "https://cdn.example.com/b.png"),
	}

	for i := 0; i < 3; i++ {
		_, err := rec.Reconcile(context.Background(), "card-1", messages)
		require.NoError(t, err)
	}

	// At most one add call per normalized base URL, ever.
	assert.Len(t, cards.addCalls, 2)
}

func TestReconcileNameMatchSuppresses(t *testing.T) {
	cards := &fakeCards{
		attachments: []model.CardAttachment{
			{URL: "https://other.example/path/clip.gif", Name: "clip.gif"},
		},
	}
	rec := New(cards, testLogger())

	// Different URL, same display name: suppressed by the name heuristic.
	messages := []model.Message{fileMsg("m1", "https://cdn.example.com/clip.gif")}

	added, err := rec.Reconcile(context.Background(), "card-1", messages)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Empty(t, cards.addCalls)
}

func TestReconcileEmbedAndBodyCandidates(t *testing.T) {
	cards := &fakeCards{}
	rec := New(cards, testLogger())

	m := model.Message{
		ID: "m1", AuthorID: "u1", AuthorName: "ana",
		Content:   "context at https://example.com/report.pdf",
		CreatedAt: time.Now(),
		Embeds: []model.EmbedRef{
			{URL: "https://example.com/page", ImageURL: "https://example.com/shot.png"},
		},
	}

	added, err := rec.Reconcile(context.Background(), "card-1", []model.Message{m})
	require.NoError(t, err)

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{
		"https://example.com/shot.png",
		"https://example.com/report.pdf",
	}, cards.addCalls)
}

func TestReconcileContinuesPastFailedAdd(t *testing.T) {
	cards := &fakeCards{failURL: "https://cdn.example.com/bad.png"}
	rec := New(cards, testLogger())

	messages := []model.Message{
		fileMsg("m1", "https://cdn.example.com/bad.png"),
		fileMsg("m2", "https://cdn.example.com/good.png"),
	}

	added, err := rec.Reconcile(context.Background(), "card-1", messages)
	require.NoError(t, err, "a single failed add must not abort the pass")
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"https://cdn.example.com/good.png"}, cards.addCalls)
}
