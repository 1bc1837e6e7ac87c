package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aquastream/transcriptd/internal/component"
	"github.com/aquastream/transcriptd/internal/job"
	"github.com/aquastream/transcriptd/internal/logger"
)

// Config holds worker pool configuration.
type Config struct {
	// Enabled controls whether this process consumes jobs.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Concurrency is the number of jobs executed in parallel. Each worker
	// runs one job at a time; the stages within a job stay sequential.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("worker.concurrency must be non-negative (got: %d)", c.Concurrency)
	}
	return nil
}

// Dequeuer is the broker side the pool consumes from.
type Dequeuer interface {
	Dequeue(ctx context.Context) (*job.Job, error)
}

// Pool consumes jobs from the queue with a fixed number of workers.
// It implements component.Component.
type Pool struct {
	cfg    Config
	queue  Dequeuer
	runner *Runner
	log    *logger.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewPool creates a worker pool.
func NewPool(cfg Config, queue Dequeuer, runner *Runner, log *logger.Logger) *Pool {
	cfg.ApplyDefaults()
	return &Pool{
		cfg:    cfg,
		queue:  queue,
		runner: runner,
		log:    log.WithComponent("worker"),
	}
}

// Name returns the component name.
func (p *Pool) Name() string { return "worker" }

// Start launches the worker goroutines. Jobs already executing keep the
// context handed out here, detached from the Start caller's context.
func (p *Pool) Start(_ context.Context) error {
	if !p.cfg.Enabled {
		p.log.Info("Worker pool disabled")
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.started = true

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.work(runCtx, i)
	}

	p.log.Info("Worker pool started", logger.Fields("concurrency", p.cfg.Concurrency))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs to finish or the
// stop context to expire.
func (p *Pool) Stop(ctx context.Context) error {
	if !p.started {
		return nil
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool stop: %w", ctx.Err())
	}
}

// Health reports the pool state.
func (p *Pool) Health(_ context.Context) component.Health {
	if !p.cfg.Enabled {
		return component.Health{Name: p.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if !p.started {
		return component.Health{Name: p.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: p.Name(), Status: component.StatusHealthy}
}

// work is one consumer loop: block on the queue, execute, repeat.
func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.WithFields(map[string]interface{}{"worker_id": id})
	log.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("Worker stopped")
			return
		default:
		}

		j, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			log.Error("Dequeue failed", logger.ErrorFields("dequeue", err))
			// Back off briefly so a broken broker doesn't spin the loop.
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if j == nil {
			continue
		}

		log.Info("Job dequeued", logger.Fields(logger.FieldTaskID, j.ID))
		p.runner.Run(ctx, *j)
	}
}
