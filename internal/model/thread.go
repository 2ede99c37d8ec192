package model

import "time"

// Thread is a discussion thread in the Thread System.
// Threads are owned by Discord and read-only to this engine.
type Thread struct {
	// ID is the thread's channel identifier.
	ID string `json:"id"`

	// Name is the thread's display name.
	Name string `json:"name"`

	// CreatorID is the identifier of the user who opened the thread.
	CreatorID string `json:"creator_id"`

	// CreatorName is the display name of the thread creator.
	CreatorName string `json:"creator_name"`

	// CreatedAt is when the thread was opened.
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentRef describes a file attached to a message.
type AttachmentRef struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// EmbedRef describes a rich embed carried by a message. At most one
// link is derived from an embed, preferring image, then video, then
// the generic URL.
type EmbedRef struct {
	URL         string `json:"url"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FooterText  string `json:"footer_text"`
	ImageURL    string `json:"image_url"`
	VideoURL    string `json:"video_url"`
}

// Message is a single message in a thread.
type Message struct {
	// ID is the message identifier.
	ID string `json:"id"`

	// AuthorID identifies the message author.
	AuthorID string `json:"author_id"`

	// AuthorName is the author's display name.
	AuthorName string `json:"author_name"`

	// FromSelf marks messages authored by this engine. Self messages
	// are excluded from aggregation to prevent feedback loops.
	FromSelf bool `json:"from_self"`

	// Content is the literal body text.
	Content string `json:"content"`

	// Attachments lists attached files in upload order.
	Attachments []AttachmentRef `json:"attachments,omitempty"`

	// Embeds lists rich embeds in render order.
	Embeds []EmbedRef `json:"embeds,omitempty"`

	// CreatedAt is when the message was posted.
	CreatedAt time.Time `json:"created_at"`
}
