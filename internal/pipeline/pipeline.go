// Package pipeline implements the ordered transcript-acquisition fallback:
// manual captions, then auto captions, then audio extraction with speech
// recognition. Strategies are tried in order of cost; the first artifact
// wins and later stages are never invoked.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/observability"
)

// ErrNoTranscript is returned when every acquisition stage is exhausted
// without producing an artifact. The message text is part of the callback
// contract and must stay stable.
var ErrNoTranscript = errors.New("No manual or auto subtitles available for this video")

// Config holds pipeline configuration.
type Config struct {
	// WorkDir is the root under which per-job working directories are
	// created. Defaults to the system temp directory.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
}

// Result is the product of a successful acquisition.
type Result struct {
	// Source identifies the strategy that produced the transcript.
	Source string
	// Transcript is the canonical plain text, one utterance per line.
	Transcript string
}

// Strategy is one acquisition attempt. Attempt returns the canonical
// transcript when the strategy produced an artifact, ok=false when the
// strategy came up empty, and an error for anything unexpected.
// Normalization is strategy-internal: a returned transcript is always
// canonical.
type Strategy interface {
	// Tag is the source identifier reported in the outcome.
	Tag() string

	// Attempt tries to acquire a transcript for url, using workDir for
	// any intermediate artifacts.
	Attempt(ctx context.Context, url, workDir string) (transcript string, ok bool, err error)
}

// Chain runs strategies in order until one yields a transcript.
type Chain struct {
	strategies []Strategy
	cfg        Config
	log        *logger.Logger
	tracer     trace.Tracer
}

// NewChain creates a chain over the given strategies, tried in order.
func NewChain(cfg Config, log *logger.Logger, strategies ...Strategy) *Chain {
	cfg.ApplyDefaults()
	return &Chain{
		strategies: strategies,
		cfg:        cfg,
		log:        log.WithComponent("pipeline"),
		tracer:     observability.Tracer("pipeline"),
	}
}

// Run produces exactly one Result for url or fails with a single terminal
// error once every strategy is exhausted. A fresh working directory is
// created for the invocation and removed on every exit path.
func (c *Chain) Run(ctx context.Context, url string) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("video.url", url)))
	defer span.End()

	workDir, err := os.MkdirTemp(c.cfg.WorkDir, "transcriptd-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	last := len(c.strategies) - 1
	for i, strategy := range c.strategies {
		transcript, ok, err := strategy.Attempt(ctx, url, workDir)
		if err != nil {
			// A non-final stage never fails the chain; the next,
			// more expensive stage gets its turn.
			if i < last {
				c.log.Warn("Acquisition stage failed, falling back", logger.Fields(
					logger.FieldSource, strategy.Tag(),
					logger.FieldError, err.Error(),
				))
				continue
			}
			span.RecordError(err)
			return nil, err
		}
		if !ok {
			c.log.Debug("Acquisition stage empty", logger.Fields(
				logger.FieldSource, strategy.Tag(),
			))
			continue
		}

		span.SetAttributes(attribute.String("transcript.source", strategy.Tag()))
		return &Result{Source: strategy.Tag(), Transcript: transcript}, nil
	}

	span.RecordError(ErrNoTranscript)
	return nil, ErrNoTranscript
}
