// Package worker executes queued transcription jobs: a runner that owns one
// job's lifecycle end to end, and a pool that feeds runners from the queue.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aquastream/transcriptd/internal/job"
	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/observability"
	"github.com/aquastream/transcriptd/internal/pipeline"
)

// Acquirer produces one acquisition result per invocation.
type Acquirer interface {
	Run(ctx context.Context, url string) (*pipeline.Result, error)
}

// Deliverer posts an outcome to a callback URL.
type Deliverer interface {
	Deliver(ctx context.Context, outcome job.Outcome, callbackURL string) error
}

// Runner owns a job's entire execution. It always produces exactly one
// Outcome and makes exactly one delivery attempt; no failure below it
// escapes.
type Runner struct {
	chain    Acquirer
	notifier Deliverer
	log      *logger.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// NewRunner creates a Runner.
func NewRunner(chain Acquirer, notifier Deliverer, log *logger.Logger, metrics *Metrics) *Runner {
	return &Runner{
		chain:    chain,
		notifier: notifier,
		log:      log.WithComponent("runner"),
		metrics:  metrics,
		tracer:   observability.Tracer("worker"),
	}
}

// Run executes j to completion. It never returns an error: every failure,
// including a panic from the pipeline, is converted into a failed Outcome
// and delivered.
func (r *Runner) Run(ctx context.Context, j job.Job) {
	ctx, span := r.tracer.Start(ctx, "job.run",
		trace.WithAttributes(attribute.String("job.id", j.ID)))
	defer span.End()

	start := time.Now()
	outcome := r.execute(ctx, j)
	duration := time.Since(start)

	r.metrics.RecordJob(ctx, outcome.Status, outcome.Source, duration)

	if outcome.Status == job.StatusSuccess {
		r.log.Info("Job succeeded", logger.Fields(
			logger.FieldTaskID, j.ID,
			logger.FieldSource, outcome.Source,
			logger.FieldDuration, duration.Milliseconds(),
		))
	} else {
		r.log.Warn("Job failed", logger.Fields(
			logger.FieldTaskID, j.ID,
			logger.FieldError, outcome.Error,
			logger.FieldDuration, duration.Milliseconds(),
		))
	}

	// Exactly one delivery attempt. Failure is logged and counted; there
	// is no channel left to surface it to, so the job is finished
	// regardless.
	if err := r.notifier.Deliver(ctx, outcome, j.WebhookURL); err != nil {
		r.metrics.RecordDeliveryFailure(ctx)
		r.log.Error("Outcome delivery failed", logger.Fields(
			logger.FieldTaskID, j.ID,
			"webhook_url", j.WebhookURL,
			logger.FieldError, err.Error(),
		))
	}
}

// execute runs the acquisition chain and builds the single Outcome.
// A panic anywhere below is recovered into a failed Outcome.
func (r *Runner) execute(ctx context.Context, j job.Job) (outcome job.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Panic during job execution", logger.Fields(
				logger.FieldTaskID, j.ID,
				"panic", fmt.Sprintf("%v", p),
			))
			outcome = job.Failed(j, fmt.Sprintf("panic: %v", p))
		}
	}()

	result, err := r.chain.Run(ctx, j.VideoURL)
	if err != nil {
		return job.Failed(j, err.Error())
	}
	return job.Succeeded(j, result.Source, result.Transcript)
}
