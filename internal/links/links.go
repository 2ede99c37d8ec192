package links

import (
	"regexp"
	"strings"
)

// urlPattern matches bare http(s) URLs embedded in message text.
var urlPattern = regexp.MustCompile(`https?://[^\s<>()"']+`)

// mediaExtensions are file extensions treated as media when a message
// body is nothing but a link.
var mediaExtensions = map[string]string{
	".gif":  "GIF",
	".png":  "image",
	".jpg":  "image",
	".jpeg": "image",
	".webp": "image",
	".mp4":  "video",
	".webm": "video",
	".mov":  "video",
}

// mediaHosts are domains that serve media content regardless of the
// URL's extension.
var mediaHosts = []string{
	"tenor.com",
	"giphy.com",
	"imgur.com",
	"cdn.discordapp.com",
	"media.discordapp.net",
}

// shortLinkPattern matches media share links that carry no extension
// (tenor/giphy view pages).
var shortLinkPattern = regexp.MustCompile(`https?://(www\.)?(tenor\.com/view|gph\.is|giphy\.com/gifs)/\S+`)

// ExtractURLs extracts all bare URLs from text, deduplicated and
// preserving the order of first occurrence.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?")
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// NormalizeBase strips the query string and fragment from a URL.
// Two attachment candidates with the same base are considered the
// same attachment.
func NormalizeBase(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}

// MediaKind reports whether body is a single bare media URL and, if
// so, what kind of media it points at ("GIF", "image", "video", or
// "media" for host/short-link matches). A body with any surrounding
// text is not media-only.
func MediaKind(body string) (string, bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
		return "", false
	}
	if !urlPattern.MatchString(trimmed) || urlPattern.FindString(trimmed) != trimmed {
		return "", false
	}

	base := strings.ToLower(NormalizeBase(trimmed))
	for ext, kind := range mediaExtensions {
		if strings.HasSuffix(base, ext) {
			return kind, true
		}
	}
	if shortLinkPattern.MatchString(trimmed) {
		return "GIF", true
	}
	for _, host := range mediaHosts {
		if strings.Contains(base, "://"+host+"/") ||
			strings.Contains(base, "://www."+host+"/") {
			return "media", true
		}
	}
	return "", false
}
