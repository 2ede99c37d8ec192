package model

import "time"

// FooterMarker is attached to every outbound notification. It doubles
// as user-facing attribution and as the machine-readable signal that a
// thread message was authored by this engine.
const FooterMarker = "via trello-bridge"

// Notification is a rendered change notification posted into a thread
// as a single embed.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	Footer      string    `json:"footer"`
	Timestamp   time.Time `json:"timestamp"`
}
