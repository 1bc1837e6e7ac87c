package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aquastream/transcriptd/internal/component"
	"github.com/aquastream/transcriptd/internal/logger"
)

// startPingAttempts is how many times Start retries the initial ping before
// giving up, mirroring broker-connection retry at startup.
const startPingAttempts = 5

// Component wraps Client and implements component.Component.
type Component struct {
	client  *Client
	log     *logger.Logger
	started bool
}

// NewComponent creates a lifecycle-managed Redis component over an
// existing client. go-redis connects lazily, so the client can be built
// before the lifecycle begins; Start verifies connectivity.
func NewComponent(client *Client, log *logger.Logger) *Component {
	return &Component{client: client, log: log.WithComponent("redis")}
}

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start verifies connectivity, retrying the initial ping with a short
// backoff.
func (c *Component) Start(ctx context.Context) error {
	var pingErr error
	for attempt := 1; attempt <= startPingAttempts; attempt++ {
		pingErr = c.client.Ping(ctx)
		if pingErr == nil {
			c.started = true
			return nil
		}
		c.log.Warn("Redis ping failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   pingErr.Error(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return fmt.Errorf("redis unreachable after %d attempts: %w", startPingAttempts, pingErr)
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	return c.client.Close()
}

// Health pings the server.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.client == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Client returns the started client. Nil before Start succeeds.
func (c *Component) Client() *Client {
	return c.client
}
