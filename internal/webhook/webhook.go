// Package webhook delivers outcome notifications to caller-supplied
// callback URLs. Delivery is best-effort: one POST, no retry.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aquastream/transcriptd/internal/job"
	"github.com/aquastream/transcriptd/internal/logger"
)

const defaultTimeout = 30 * time.Second

// Config holds outcome delivery configuration.
type Config struct {
	// Timeout bounds a single callback POST.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Notifier posts outcome objects to callback URLs.
type Notifier struct {
	client *http.Client
	log    *logger.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(cfg Config, log *logger.Logger) *Notifier {
	cfg.ApplyDefaults()
	return &Notifier{
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.WithComponent("webhook"),
	}
}

// Deliver performs one synchronous POST of the outcome as JSON to
// callbackURL. The returned error is informational: the caller logs it and
// moves on, there is no retry channel.
func (n *Notifier) Deliver(ctx context.Context, outcome job.Outcome, callbackURL string) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("webhook marshal outcome: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the response body itself is
	// not part of the contract.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook post: callback returned status %d", resp.StatusCode)
	}

	n.log.Debug("Outcome delivered", logger.Fields(
		logger.FieldTaskID, outcome.TaskID,
		logger.FieldStatus, outcome.Status,
	))
	return nil
}
