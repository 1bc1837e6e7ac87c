// Command transcriptd runs the transcription service: an HTTP submission
// API, a Redis-backed job queue, and a worker pool that acquires
// transcripts and delivers outcomes to per-job webhooks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquastream/transcriptd/internal/api"
	"github.com/aquastream/transcriptd/internal/component"
	"github.com/aquastream/transcriptd/internal/config"
	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/observability"
	"github.com/aquastream/transcriptd/internal/pipeline"
	"github.com/aquastream/transcriptd/internal/queue"
	"github.com/aquastream/transcriptd/internal/server"
	"github.com/aquastream/transcriptd/internal/transcription/whisper"
	"github.com/aquastream/transcriptd/internal/webhook"
	"github.com/aquastream/transcriptd/internal/worker"
	"github.com/aquastream/transcriptd/internal/ytdlp"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "transcriptd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Starting service", logger.Fields(
		"service", config.ServiceName,
		"version", version,
		"environment", cfg.Environment,
	))

	ctx := context.Background()

	if cfg.Observability.Enabled {
		err := observability.Setup(ctx, observability.Config{
			ServiceName:    config.ServiceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			SampleRate:     cfg.Observability.SampleRate,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := observability.Shutdown(shutdownCtx); err != nil {
				log.Warn("Observability shutdown failed", logger.ErrorFields("shutdown", err))
			}
		}()
	}

	// Broker. The client connects lazily; the component's Start verifies
	// connectivity before anything consumes or produces.
	redisClient, err := queue.NewClient(cfg.Redis, log)
	if err != nil {
		return err
	}
	jobQueue := queue.New(redisClient, cfg.Queue)

	// Acquisition chain in precedence order: manual captions, automatic
	// captions, then speech recognition over extracted audio.
	fetcher := ytdlp.NewClient(cfg.YtDlp, log)
	transcriber := whisper.NewProvider(cfg.Whisper)
	chain := pipeline.NewChain(cfg.Pipeline, log,
		pipeline.ManualCaptions(fetcher),
		pipeline.AutoCaptions(fetcher),
		pipeline.SpeechRecognition(fetcher, transcriber),
	)

	metrics, err := worker.NewMetrics(observability.Meter("worker"))
	if err != nil {
		return err
	}
	runner := worker.NewRunner(chain, webhook.NewNotifier(cfg.Webhook, log), log, metrics)
	pool := worker.NewPool(cfg.Worker, jobQueue, runner, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	registry := component.NewRegistry()
	for _, c := range []component.Component{
		queue.NewComponent(redisClient, log),
		pool,
		srv,
	} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	srv.RegisterHealthEndpoints(config.ServiceName, registry.HealthAll)
	handler := api.NewHandler(jobQueue, log)
	handler.RegisterRoutes(srv.GinEngine(), server.APIKeyAuth(cfg.Auth.APIKey))

	if err := registry.StartAll(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = registry.StopAll(stopCtx)
		return err
	}

	log.Info("Service ready", logger.Fields("addr", srv.Addr()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Shutdown signal received", logger.Fields("signal", sig.String()))

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := registry.StopAll(stopCtx); err != nil {
		return err
	}

	log.Info("Service stopped")
	return nil
}
