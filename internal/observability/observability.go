// Package observability configures OpenTelemetry tracing and metrics for
// the process. Setup is idempotent: it runs once per process and subsequent
// calls are no-ops.
package observability

import (
	"context"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/aquastream/transcriptd/internal/logger"
)

// Config configures the OTLP exporters.
type Config struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
}

var (
	mu         sync.Mutex
	configured bool

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
)

// Setup initializes the global tracer and meter providers. The configured
// flag guarantees the providers are installed at most once per process.
func Setup(ctx context.Context, cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if configured {
		return nil
	}

	tp, err := initTracer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	mp, err := initMeter(ctx, cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("observability: %w", err)
	}

	tracerProvider = tp
	meterProvider = mp
	configured = true

	logger.Info("Observability configured", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return nil
}

// Shutdown flushes and stops the installed providers.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if !configured {
		return nil
	}

	var errs []error
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	configured = false

	if len(errs) > 0 {
		return fmt.Errorf("observability shutdown: %v", errs)
	}
	return nil
}
