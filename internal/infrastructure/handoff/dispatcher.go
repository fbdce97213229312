// Package handoff delivers new-order notifications to the seller.
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pattycroche/storefront/internal/application/checkout"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// LogDispatcher records the handoff in the application log. It is used when
// no webhook is configured; the shopper still opens the chat link themselves.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-only dispatcher
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch logs the handoff
func (d *LogDispatcher) Dispatch(_ context.Context, h checkout.Handoff) error {
	d.logger.Info("Order handoff ready",
		zap.String("order_number", h.OrderNumber),
		zap.String("url", h.URL),
	)
	return nil
}

// WebhookDispatcher posts each handoff as JSON to a seller-side endpoint
// (a chat gateway, an automation tool)
type WebhookDispatcher struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// WebhookOption configures a WebhookDispatcher
type WebhookOption func(*WebhookDispatcher)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(d *WebhookDispatcher) {
		d.httpClient = client
	}
}

// NewWebhookDispatcher creates a dispatcher posting to url
func NewWebhookDispatcher(url string, timeout time.Duration, logger *zap.Logger, opts ...WebhookOption) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &WebhookDispatcher{
		url: url,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("handoff"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type webhookPayload struct {
	OrderNumber string    `json:"order_number"`
	Message     string    `json:"message"`
	URL         string    `json:"url"`
	SentAt      time.Time `json:"sent_at"`
}

// Dispatch posts the handoff. Any 2xx response is a success.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, h checkout.Handoff) error {
	body, err := json.Marshal(webhookPayload{
		OrderNumber: h.OrderNumber,
		Message:     h.Message,
		URL:         h.URL,
		SentAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build handoff request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Order-Number", h.OrderNumber)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post handoff: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post handoff: unexpected status %d", resp.StatusCode)
	}
	d.logger.Debug("Handoff delivered", zap.String("order_number", h.OrderNumber))
	return nil
}

var (
	_ checkout.HandoffDispatcher = (*LogDispatcher)(nil)
	_ checkout.HandoffDispatcher = (*WebhookDispatcher)(nil)
)
