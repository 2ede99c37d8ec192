package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no urls",
			text: "just some words",
			want: nil,
		},
		{
			name: "single url",
			text: "see https://example.com/doc",
			want: []string{"https://example.com/doc"},
		},
		{
			name: "trailing punctuation stripped",
			text: "look at https://example.com/doc.",
			want: []string{"https://example.com/doc"},
		},
		{
			name: "duplicates removed preserving order",
			text: "https://a.example/x then https://b.example/y then https://a.example/x",
			want: []string{"https://a.example/x", "https://b.example/y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.text))
		})
	}
}

func TestNormalizeBase(t *testing.T) {
	assert.Equal(t,
		"https://cdn.example.com/clip.gif",
		NormalizeBase("https://cdn.example.com/clip.gif?ex=123&sig=abc"),
	)
	assert.Equal(t,
		"https://example.com/page",
		NormalizeBase("https://example.com/page#section"),
	)
	assert.Equal(t,
		"https://example.com/plain",
		NormalizeBase("https://example.com/plain"),
	)
}

func TestMediaKind(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind string
		wantOK   bool
	}{
		{"bare gif url", "https://cdn.example.com/clip.gif", "GIF", true},
		{"gif with query", "https://cdn.example.com/clip.gif?sig=x", "GIF", true},
		{"bare image", "https://example.com/pic.png", "image", true},
		{"bare video", "https://example.com/demo.mp4", "video", true},
		{"tenor view link", "https://tenor.com/view/funny-cat-12345", "GIF", true},
		{"media host", "https://media.discordapp.net/attachments/1/2/x", "media", true},
		{"url with surrounding text", "check https://x.test/a.gif out", "", false},
		{"plain text", "fixed!", "", false},
		{"empty", "", "", false},
		{"non-media url", "https://example.com/docs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := MediaKind(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}
