// Package notify delivers failure events to an external webhook so a
// human hears about postings the pipeline could not finish.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// FailureEvent describes one failed posting run.
type FailureEvent struct {
	PostingID  string    `json:"posting_id"`
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers failure events.
type Notifier interface {
	NotifyFailure(ctx context.Context, event FailureEvent) error
}

// Nop is a Notifier that discards events.
type Nop struct{}

// NotifyFailure implements Notifier.
func (Nop) NotifyFailure(context.Context, FailureEvent) error { return nil }

// WebhookNotifier posts failure events as JSON to a configured URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, log *zap.Logger) *WebhookNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// NotifyFailure posts the event. A non-2xx response is an error.
func (n *WebhookNotifier) NotifyFailure(ctx context.Context, event FailureEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode failure event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.log.Info("failure event delivered",
		zap.String("posting_id", event.PostingID),
		zap.String("stage", event.Stage))
	return nil
}
