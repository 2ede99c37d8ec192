package discord

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nhle/trello-bridge/internal/model"
)

// historyPageSize is the page size used when walking message history.
const historyPageSize = 100

// Me resolves the bot's own user and remembers its id for
// self-authorship detection on fetched messages.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/@me", &user); err != nil {
		return nil, fmt.Errorf("fetching bot user: %w", err)
	}
	c.selfID = user.ID
	return &user, nil
}

// Thread fetches a thread channel and resolves its creator's display
// name. A failed creator lookup falls back to the raw owner id rather
// than failing the fetch.
func (c *Client) Thread(ctx context.Context, threadID string) (*model.Thread, error) {
	var ch Channel
	if err := c.get(ctx, "/channels/"+threadID, &ch); err != nil {
		return nil, fmt.Errorf("fetching thread %s: %w", threadID, err)
	}

	creatorName := ch.OwnerID
	if ch.OwnerID != "" {
		var owner User
		if err := c.get(ctx, "/users/"+ch.OwnerID, &owner); err == nil {
			creatorName = owner.DisplayName()
		}
	}

	createdAt := snowflakeTime(ch.ID)
	if ch.ThreadMetadata != nil && !ch.ThreadMetadata.CreateTimestamp.IsZero() {
		createdAt = ch.ThreadMetadata.CreateTimestamp
	}

	return &model.Thread{
		ID:          ch.ID,
		Name:        ch.Name,
		CreatorID:   ch.OwnerID,
		CreatorName: creatorName,
		CreatedAt:   createdAt,
	}, nil
}

// ThreadMessages fetches the complete message history of a thread,
// oldest first. Pages are fetched newest-first with a moving "before"
// cursor and reversed once complete.
func (c *Client) ThreadMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	var pages [][]Message
	before := ""

	for {
		page, err := c.messagePage(ctx, threadID, before)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		pages = append(pages, page)
		if len(page) < historyPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	// Pages arrive newest-first and so do messages within a page;
	// walk everything backwards to produce oldest-first order.
	var result []model.Message
	for i := len(pages) - 1; i >= 0; i-- {
		page := pages[i]
		for j := len(page) - 1; j >= 0; j-- {
			result = append(result, c.messageToModel(page[j]))
		}
	}
	return result, nil
}

// RecentMessages fetches up to limit of the newest messages in a
// thread, newest first. Used by the startup notification rescan.
func (c *Client) RecentMessages(ctx context.Context, threadID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > historyPageSize {
		limit = historyPageSize
	}

	path := fmt.Sprintf("/channels/%s/messages?limit=%d", threadID, limit)
	var page []Message
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("fetching recent messages of thread %s: %w", threadID, err)
	}

	result := make([]model.Message, 0, len(page))
	for _, msg := range page {
		result = append(result, c.messageToModel(msg))
	}
	return result, nil
}

// PostNotification posts a rendered notification into a thread as a
// single embed carrying the engine's footer marker.
func (c *Client) PostNotification(ctx context.Context, threadID string, n model.Notification) error {
	payload := map[string]interface{}{
		"embeds": []Embed{{
			Title:       n.Title,
			Description: n.Description,
			Color:       n.Color,
			Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
			Footer:      &EmbedFooter{Text: n.Footer},
		}},
	}

	if err := c.post(ctx, "/channels/"+threadID+"/messages", payload, nil); err != nil {
		return fmt.Errorf("posting notification to thread %s: %w", threadID, err)
	}
	return nil
}

// ActiveThreads lists the guild's currently active (non-archived)
// threads.
func (c *Client) ActiveThreads(ctx context.Context, guildID string) ([]Channel, error) {
	var resp ActiveThreads
	if err := c.get(ctx, "/guilds/"+guildID+"/threads/active", &resp); err != nil {
		return nil, fmt.Errorf("listing active threads of guild %s: %w", guildID, err)
	}
	return resp.Threads, nil
}

// messagePage fetches one page of messages, newest first.
func (c *Client) messagePage(ctx context.Context, threadID, before string) ([]Message, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", historyPageSize))
	if before != "" {
		params.Set("before", before)
	}

	var page []Message
	path := "/channels/" + threadID + "/messages?" + params.Encode()
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("fetching messages of thread %s: %w", threadID, err)
	}
	return page, nil
}

// messageToModel converts a wire message to the engine model, marking
// engine-authored messages via the resolved bot user id.
func (c *Client) messageToModel(msg Message) model.Message {
	m := model.Message{
		ID:         msg.ID,
		AuthorID:   msg.Author.ID,
		AuthorName: msg.Author.DisplayName(),
		FromSelf:   c.selfID != "" && msg.Author.ID == c.selfID,
		Content:    msg.Content,
		CreatedAt:  msg.Timestamp,
	}

	for _, a := range msg.Attachments {
		m.Attachments = append(m.Attachments, model.AttachmentRef{
			URL:         a.URL,
			Name:        a.Filename,
			ContentType: a.ContentType,
		})
	}

	for _, e := range msg.Embeds {
		ref := model.EmbedRef{
			URL:         e.URL,
			Type:        e.Type,
			Title:       e.Title,
			Description: e.Description,
		}
		if e.Footer != nil {
			ref.FooterText = e.Footer.Text
		}
		if e.Image != nil {
			ref.ImageURL = e.Image.URL
		}
		if e.Video != nil {
			ref.VideoURL = e.Video.URL
		}
		m.Embeds = append(m.Embeds, ref)
	}

	return m
}

// discordEpoch is the Discord snowflake epoch (2015-01-01T00:00:00Z).
const discordEpoch = 1420070400000

// snowflakeTime extracts the creation time encoded in a snowflake id.
func snowflakeTime(id string) time.Time {
	var n uint64
	for _, r := range id {
		if r < '0' || r > '9' {
			return time.Time{}
		}
		n = n*10 + uint64(r-'0')
	}
	ms := int64(n>>22) + discordEpoch
	return time.UnixMilli(ms).UTC()
}
