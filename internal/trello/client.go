package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Trello REST API root.
const DefaultBaseURL = "https://api.trello.com"

// Client is a thin HTTP client for the Trello REST API v1. It handles
// key/token authentication, JSON decoding, and automatic retry with
// exponential backoff on transient failures (timeouts, connection
// resets, 429 and 5xx responses). Rejected requests (other 4xx) are
// surfaced immediately without retry.
type Client struct {
	baseURL    string
	key        string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new Trello HTTP client authenticated with the
// given API key and token.
func NewClient(key, token string) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		key:     key,
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

// PermanentError marks a request the remote system rejected. These
// are never retried.
type PermanentError struct {
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("trello rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsPermanent reports whether err (or any error in its chain) is a
// PermanentError.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

// get performs an authenticated GET and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, params, result)
}

// post performs an authenticated POST with query-string parameters.
func (c *Client) post(ctx context.Context, path string, params url.Values, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, params, result)
}

// put performs an authenticated PUT with query-string parameters.
func (c *Client) put(ctx context.Context, path string, params url.Values, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, params, result)
}

// do is the core HTTP method. Trello takes all write parameters in
// the query string, so requests carry no body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.key)
	params.Set("token", c.token)

	reqURL := c.baseURL + path + "?" + params.Encode()

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

		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

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
			var trelloErr ErrorResponse
			if json.Unmarshal(respBody, &trelloErr) == nil && trelloErr.Message != "" {
				msg = trelloErr.Message
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
