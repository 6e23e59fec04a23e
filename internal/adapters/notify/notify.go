// Package notify holds the HTTP clients for the external notification and
// readiness-score services.
//
// Both sinks are non-critical: callers on the fan-out path treat any error
// from here as log-and-drop. Non-2xx responses map to ErrExternalService
// and are never retried.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/queue"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// defaultTimeout bounds a single sink call.
const defaultTimeout = 10 * time.Second

// notificationPayload is the wire shape for the notification service.
type notificationPayload struct {
	UserID             string `json:"userId"`
	PortfolioItemID    string `json:"portfolioItemId"`
	PortfolioItemTitle string `json:"portfolioItemTitle"`
}

// readinessPayload is the wire shape for the analytics service.
type readinessPayload struct {
	UserID    string  `json:"userId"`
	Score     float64 `json:"score"`
	UpdatedAt string  `json:"updatedAt"`
}

// Client routes fan-out payloads to their external destinations. A sink
// with an empty URL is disabled and its payloads are acknowledged without
// a call.
type Client struct {
	httpClient      *http.Client
	notificationURL string
	readinessURL    string
}

// NewClient creates a sink client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch delivers one payload based on its kind.
func (c *Client) Dispatch(ctx context.Context, p queue.Payload) error {
	switch p.Kind {
	case model.NotifyItemCreated:
		if c.notificationURL == "" {
			return nil
		}
		return c.post(ctx, c.notificationURL, notificationPayload{
			UserID:             p.UserID,
			PortfolioItemID:    p.ItemID,
			PortfolioItemTitle: p.ItemTitle,
		})
	case model.NotifyReadinessUpdate:
		if c.readinessURL == "" {
			return nil
		}
		return c.post(ctx, c.readinessURL, readinessPayload{
			UserID:    p.UserID,
			Score:     p.ReadinessScore,
			UpdatedAt: p.At.UTC().Format(time.RFC3339),
		})
	default:
		return fmt.Errorf("%w: unknown payload kind %q", ErrExternalService, p.Kind)
	}
}

// post sends a JSON body and maps non-2xx responses to ErrExternalService.
func (c *Client) post(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode sink payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s returned status %d", ErrExternalService, url, resp.StatusCode)
	}
	return nil
}
