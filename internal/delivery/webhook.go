package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrRateLimited marks a transient delivery failure the caller may retry.
var ErrRateLimited = errors.New("webhook rate limited")

// Message is a rendered payload for a chat webhook: plain content, optional
// embeds, or both.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a structured block inside a webhook message.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// WebhookClient posts messages to a Discord-style webhook URL.
type WebhookClient struct {
	URL    string
	client *http.Client
}

// NewWebhookClient creates a new webhook client.
func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		URL:    url,
		client: http.DefaultClient,
	}
}

// Send posts one message to the webhook. A 429 response returns
// ErrRateLimited so the caller can back off and retry; delivery failures
// are never assumed recoverable here.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
