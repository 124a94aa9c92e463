package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

// Transport delivers a single payload to an outbound channel.
type Transport interface {
	Deliver(ctx context.Context, payload Payload) error
}

// WebhookClient posts payloads to a Discord webhook URL.
type WebhookClient struct {
	url       string
	client    *http.Client
	logger    *zap.Logger
	pageDelay time.Duration
}

// NewWebhookClient builds a webhook transport. pageDelay is the pause
// inserted between successive payloads of one sequence; the real delivery
// channel rate-limits bursts, so callers must keep it.
func NewWebhookClient(url string, pageDelay time.Duration, logger *zap.Logger) *WebhookClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageDelay <= 0 {
		pageDelay = time.Second
	}
	return &WebhookClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		pageDelay: pageDelay,
	}
}

type webhookEmbedFooter struct {
	Text string `json:"text"`
}

type webhookEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []Field             `json:"fields,omitempty"`
	Footer      *webhookEmbedFooter `json:"footer,omitempty"`
}

type webhookRequest struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

// Deliver sends one payload. A non-2xx response or transport error is
// reported as a typed delivery failure.
func (w *WebhookClient) Deliver(ctx context.Context, payload Payload) error {
	embed := webhookEmbed{
		Title:       payload.Title,
		Description: payload.Description,
		Color:       payload.Color,
		Fields:      payload.Fields,
	}
	if !payload.Timestamp.IsZero() {
		embed.Timestamp = payload.Timestamp.Format(time.RFC3339)
	}
	if payload.Footer != "" {
		embed.Footer = &webhookEmbedFooter{Text: payload.Footer}
	}

	body, err := json.Marshal(webhookRequest{Content: payload.Content, Embeds: []webhookEmbed{embed}})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDeliveryFailed.Code, "post webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.New(appErrors.ErrDeliveryFailed.Code, fmt.Sprintf("webhook returned status %d", resp.StatusCode))
	}

	w.logger.Debug("webhook payload delivered", zap.String("payload_id", payload.ID))
	return nil
}

// DeliverAll sends payloads in order with the configured inter-page delay.
// A failed page is logged and skipped; it never aborts the rest of the
// sequence. The number of successfully delivered payloads is returned.
func (w *WebhookClient) DeliverAll(ctx context.Context, payloads []Payload) int {
	delivered := 0
	for i, payload := range payloads {
		if i > 0 {
			select {
			case <-ctx.Done():
				return delivered
			case <-time.After(w.pageDelay):
			}
		}

		if err := w.Deliver(ctx, payload); err != nil {
			w.logger.Error("payload delivery failed",
				zap.String("payload_id", payload.ID),
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}
	return delivered
}
