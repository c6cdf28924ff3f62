package introspection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// MaxBodyBytes caps introspection responses; large schemas stay well below it.
const MaxBodyBytes = 64 * 1024 * 1024

var ErrBodyTooLarge = errors.New("introspection response exceeds size limit")

type Client struct {
	http    *http.Client
	maxBody int64
}

// NewClient returns a Client whose requests time out after timeout.
// A zero timeout leaves requests bounded only by their context.
func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}, maxBody: MaxBodyBytes}
}

func NewClientWithHTTP(c *http.Client) *Client {
	if c == nil {
		c = http.DefaultClient
	}
	return &Client{http: c, maxBody: MaxBodyBytes}
}

func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// Fetch sends the introspection query to url and returns the response body
// verbatim.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(RequestBody()))
	if err != nil {
		return nil, fmt.Errorf("create introspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read introspection response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("introspect %s: %w (%d bytes)", url, ErrBodyTooLarge, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	const maxSnippet = 200
	body := e.Body
	if len(body) > maxSnippet {
		body = body[:maxSnippet] + "..."
	}
	if body == "" {
		return fmt.Sprintf("introspect %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("introspect %s: HTTP %d: %s", e.URL, e.Status, body)
}
