// Package relay forwards newly stored complaints to the sibling node so
// both deployments converge on the same dataset. Forwarding is fire and
// forget: a committed local write is never rolled back because the remote
// was unreachable.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ileco-one/triage-backend/internal/services"
)

// Client pushes complaint payloads to the sibling node's webhook.
type Client struct {
	client *resty.Client
	secret string
}

// NewClient constructs a Client for the sibling base URL. An empty URL
// yields a disabled client whose Forward is a no-op.
func NewClient(baseURL, secret string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(4 * time.Second)
	return &Client{client: c, secret: secret}
}

// Enabled reports whether a sibling node is configured.
func (c *Client) Enabled() bool { return c.client.BaseURL != "" }

// Forward posts one complaint to the sibling's ingest webhook. Errors are
// returned for logging only; callers must not fail their own request on
// them.
func (c *Client) Forward(ctx context.Context, payload services.RelayedSubmission) error {
	if !c.Enabled() {
		return nil
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Relay-Secret", c.secret).
		SetBody(payload).
		Post("/api/webhook/new_complaint")
	if err != nil {
		return fmt.Errorf("relay forward: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("relay forward: sibling returned %s", resp.Status())
	}
	return nil
}

// ForwardAsync forwards in a goroutine with its own deadline, logging the
// outcome. Used on the intake hot path.
func (c *Client) ForwardAsync(payload services.RelayedSubmission) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Forward(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("complaint relay failed")
		}
	}()
}
