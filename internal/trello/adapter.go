package trello

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nhle/trello-bridge/internal/model"
)

// CreateCard creates a new card at the top of the given list and
// returns it.
func (c *Client) CreateCard(ctx context.Context, listID, name, desc string) (*model.Card, error) {
	params := url.Values{}
	params.Set("idList", listID)
	params.Set("name", name)
	params.Set("desc", desc)
	params.Set("pos", "top")

	var card Card
	if err := c.post(ctx, "/1/cards", params, &card); err != nil {
		return nil, fmt.Errorf("creating card %q: %w", name, err)
	}
	return cardToModel(card), nil
}

// UpdateCardDescription replaces a card's description wholesale. The
// description is the only card field this engine ever updates.
func (c *Client) UpdateCardDescription(ctx context.Context, cardID, desc string) error {
	params := url.Values{}
	params.Set("desc", desc)

	if err := c.put(ctx, "/1/cards/"+cardID, params, nil); err != nil {
		return fmt.Errorf("updating description of card %s: %w", cardID, err)
	}
	return nil
}

// SearchCards lists all cards on a board with their id and name. Used
// to discover a pre-existing card for a thread by naming convention.
func (c *Client) SearchCards(ctx context.Context, boardID string) ([]model.Card, error) {
	params := url.Values{}
	params.Set("fields", "id,name")

	var cards []Card
	if err := c.get(ctx, "/1/boards/"+boardID+"/cards", params, &cards); err != nil {
		return nil, fmt.Errorf("searching cards on board %s: %w", boardID, err)
	}

	result := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		result = append(result, *cardToModel(card))
	}
	return result, nil
}

// AddAttachment attaches a URL to a card under the given display name.
func (c *Client) AddAttachment(ctx context.Context, cardID, attachURL, name string) error {
	params := url.Values{}
	params.Set("url", attachURL)
	if name != "" {
		params.Set("name", name)
	}

	if err := c.post(ctx, "/1/cards/"+cardID+"/attachments", params, nil); err != nil {
		return fmt.Errorf("adding attachment to card %s: %w", cardID, err)
	}
	return nil
}

// ListAttachments returns the attachments currently on a card. The
// remote list is authoritative; callers must not cache it across
// reconciliation runs.
func (c *Client) ListAttachments(ctx context.Context, cardID string) ([]model.CardAttachment, error) {
	params := url.Values{}
	params.Set("fields", "id,url,name")

	var attachments []Attachment
	if err := c.get(ctx, "/1/cards/"+cardID+"/attachments", params, &attachments); err != nil {
		return nil, fmt.Errorf("listing attachments of card %s: %w", cardID, err)
	}

	result := make([]model.CardAttachment, 0, len(attachments))
	for _, a := range attachments {
		result = append(result, model.CardAttachment{
			ID:   a.ID,
			URL:  a.URL,
			Name: a.Name,
		})
	}
	return result, nil
}

// BoardActions returns all actions recorded on a board since the
// given instant. Trello returns them in arrival order; callers must
// sort before replay.
func (c *Client) BoardActions(ctx context.Context, boardID string, since time.Time) ([]Action, error) {
	params := url.Values{}
	params.Set("since", since.UTC().Format(time.RFC3339))
	params.Set("limit", "200")

	var actions []Action
	if err := c.get(ctx, "/1/boards/"+boardID+"/actions", params, &actions); err != nil {
		return nil, fmt.Errorf("listing actions on board %s: %w", boardID, err)
	}
	return actions, nil
}

// Board is a minimal board resource used by connection validation.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidateConnection verifies credentials and board reachability,
// returning the board's display name on success.
func (c *Client) ValidateConnection(ctx context.Context, boardID string) (string, error) {
	params := url.Values{}
	params.Set("fields", "id,name")

	var board Board
	if err := c.get(ctx, "/1/boards/"+boardID, params, &board); err != nil {
		return "", fmt.Errorf("validating Trello connection: %w", err)
	}
	return board.Name, nil
}

// cardToModel converts a wire card to the engine model.
func cardToModel(card Card) *model.Card {
	return &model.Card{
		ID:          card.ID,
		Name:        card.Name,
		Description: card.Desc,
		ListID:      card.IDList,
	}
}
