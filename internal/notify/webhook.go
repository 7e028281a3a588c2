package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/rentroom/api/internal/entity"
)

type requestIDKey struct{}

// WithRequestID attaches a request id that is forwarded as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WebhookBroadcaster posts notifications to a realtime gateway over HTTP.
type WebhookBroadcaster struct {
	client *http.Client
	url    string
}

// NewWebhookBroadcaster builds a broadcaster. When client is nil an ID token
// client for the target audience is used, falling back to a plain client.
func NewWebhookBroadcaster(client *http.Client, target string) (*WebhookBroadcaster, error) {
	target = strings.TrimRight(strings.TrimSpace(target), "/")
	if target == "" {
		return nil, fmt.Errorf("webhook url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), target)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &WebhookBroadcaster{client: client, url: target}, nil
}

// Broadcast posts n as JSON and fails on any non-2xx response.
func (b *WebhookBroadcaster) Broadcast(ctx context.Context, n entity.Notification) error {
	body, err := json.Marshal(NewMessage(n))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook error: %s", readError(resp))
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	return nil
}

func readError(resp *http.Response) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return resp.Status
}

var _ Broadcaster = (*WebhookBroadcaster)(nil)
