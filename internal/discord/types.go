package discord

import "time"

// User is a Discord user resource.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Bot        bool   `json:"bot"`
}

// DisplayName returns the user's global display name, falling back to
// the username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Channel is a Discord channel resource. Threads are channels of type
// 11 (public thread) or 12 (private thread).
type Channel struct {
	ID             string          `json:"id"`
	Type           int             `json:"type"`
	Name           string          `json:"name"`
	OwnerID        string          `json:"owner_id"`
	ParentID       string          `json:"parent_id"`
	LastMessageID  string          `json:"last_message_id"`
	ThreadMetadata *ThreadMetadata `json:"thread_metadata,omitempty"`
}

// ThreadMetadata holds thread-specific channel fields.
type ThreadMetadata struct {
	Archived        bool      `json:"archived"`
	CreateTimestamp time.Time `json:"create_timestamp"`
}

// ActiveThreads is the response of GET /guilds/{id}/threads/active.
type ActiveThreads struct {
	Threads []Channel `json:"threads"`
}

// MessageAttachment is one uploaded file on a message.
type MessageAttachment struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// EmbedMedia is an image/video/thumbnail inside an embed.
type EmbedMedia struct {
	URL string `json:"url"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Embed is a rich embed on a message. Outbound notifications are a
// single embed with title, description, color, footer, and timestamp.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Type        string       `json:"type,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Video       *EmbedMedia  `json:"video,omitempty"`
}

// Message is a Discord message resource.
type Message struct {
	ID          string              `json:"id"`
	ChannelID   string              `json:"channel_id"`
	Author      User                `json:"author"`
	Content     string              `json:"content"`
	Timestamp   time.Time           `json:"timestamp"`
	EditedAt    *time.Time          `json:"edited_timestamp"`
	Attachments []MessageAttachment `json:"attachments"`
	Embeds      []Embed             `json:"embeds"`
}

// ErrorResponse is the error body Discord returns on rejected requests.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
