package model

import "time"

// Card is a tracked unit of work in the Board System mirroring one
// thread. The engine owns the description (replaced wholesale on every
// sync) and treats attachments as append-only.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ListID      string `json:"list_id"`
}

// CardAttachment is one attachment already present on a card.
type CardAttachment struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Mapping is one thread↔card identity pair. Mappings are unique in
// both directions and append-only for the process lifetime.
type Mapping struct {
	ThreadID  string    `json:"thread_id" db:"thread_id"`
	CardID    string    `json:"card_id" db:"card_id"`
	CardName  string    `json:"card_name" db:"card_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
