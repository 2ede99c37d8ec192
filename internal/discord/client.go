package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Discord REST API root.
const DefaultBaseURL = "https://discord.com/api/v10"

// Client is a thin HTTP client for the Discord REST API. It handles
// bot-token authentication, JSON (de)serialization, and automatic
// retry with exponential backoff on transient failures. Rejected
// requests (4xx other than 429) are surfaced immediately.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int

	// selfID is the bot user's own id, resolved by Me. Messages from
	// this user are marked engine-authored.
	selfID string
}

// NewClient creates a new Discord HTTP client authenticated with the
// given bot token.
func NewClient(token string) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 3,
	}
}

// SetBaseURL overrides the API root. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// SetSelfID sets the bot user id used for self-authorship detection.
// Normally resolved by Me; exposed for tests.
func (c *Client) SetSelfID(id string) {
	c.selfID = id
}

// PermanentError marks a request the remote system rejected. These
// are never retried.
type PermanentError struct {
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("discord rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsPermanent reports whether err (or any error in its chain) is a
// PermanentError.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

// get performs an authenticated GET and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do is the core HTTP method: builds the request, applies auth, and
// retries transient failures with exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	reqURL := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTransport(err) {
				lastErr = err
				continue
			}
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("reading response body: %w", readErr)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf(
				"transient status %d on %s %s", resp.StatusCode, method, path,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := strings.TrimSpace(string(respBody))
			var discordErr ErrorResponse
			if json.Unmarshal(respBody, &discordErr) == nil && discordErr.Message != "" {
				msg = discordErr.Message
			}
			return &PermanentError{StatusCode: resp.StatusCode, Message: msg}
		}

		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w", method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// isTransport reports whether err is a transport-level failure worth
// retrying (timeout or reset connection).
func isTransport(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
