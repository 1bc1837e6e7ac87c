package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aquastream/transcriptd/internal/job"
)

// Config holds job queue configuration.
type Config struct {
	// Key is the Redis list the queue lives on.
	Key string `yaml:"key" mapstructure:"key"`
	// PollTimeout bounds a single blocking dequeue; consumers re-poll on
	// expiry so shutdown is never blocked longer than this.
	PollTimeout time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Key == "" {
		c.Key = "transcriptd:jobs"
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 5 * time.Second
	}
}

// Queue is a JSON job queue on a Redis list. Producers LPUSH, consumers
// BRPOP; each job is popped by exactly one consumer.
type Queue struct {
	client *Client
	cfg    Config
}

// New creates a Queue on the given Redis client.
func New(client *Client, cfg Config) *Queue {
	cfg.ApplyDefaults()
	return &Queue{client: client, cfg: cfg}
}

// Enqueue appends a job to the queue.
func (q *Queue) Enqueue(ctx context.Context, j job.Job) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("queue marshal job %s: %w", j.ID, err)
	}
	if err := q.client.Unwrap().LPush(ctx, q.cfg.Key, payload).Err(); err != nil {
		return fmt.Errorf("queue enqueue job %s: %w", j.ID, err)
	}
	return nil
}

// Dequeue blocks for up to the configured poll timeout and returns the next
// job, or (nil, nil) when the timeout expires with an empty queue.
func (q *Queue) Dequeue(ctx context.Context) (*job.Job, error) {
	vals, err := q.client.Unwrap().BRPop(ctx, q.cfg.PollTimeout, q.cfg.Key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue dequeue: %w", err)
	}
	// BRPop returns [key, value].
	if len(vals) != 2 {
		return nil, fmt.Errorf("queue dequeue: unexpected reply length %d", len(vals))
	}

	var j job.Job
	if err := json.Unmarshal([]byte(vals[1]), &j); err != nil {
		return nil, fmt.Errorf("queue unmarshal job: %w", err)
	}
	return &j, nil
}

// Len returns the number of queued jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.Unwrap().LLen(ctx, q.cfg.Key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue len: %w", err)
	}
	return n, nil
}
