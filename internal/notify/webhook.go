package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tasknotify/internal/domain"
)

// Webhook POSTs notifications as JSON to a URL.
type Webhook struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, Timeout: 10 * time.Second}
}

func (w *Webhook) Available() bool { return w != nil && w.URL != "" }

func (w *Webhook) Notify(ctx context.Context, n domain.Notification) error {
	if !w.Available() {
		return ErrUnavailable
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	client := w.Client
	if client == nil {
		timeout := w.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook HTTP %d error: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
