package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the worker's OpenTelemetry instruments.
type Metrics struct {
	jobsTotal        metric.Int64Counter
	jobDuration      metric.Float64Histogram
	deliveryFailures metric.Int64Counter
}

// NewMetrics creates the worker instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobsTotal, err := meter.Int64Counter("jobs.total",
		metric.WithDescription("Total jobs processed, by status and source"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.total counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("jobs.duration",
		metric.WithDescription("Duration of job executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.duration histogram: %w", err)
	}

	deliveryFailures, err := meter.Int64Counter("webhook.delivery_failures",
		metric.WithDescription("Outcome deliveries that could not be completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhook.delivery_failures counter: %w", err)
	}

	return &Metrics{
		jobsTotal:        jobsTotal,
		jobDuration:      jobDuration,
		deliveryFailures: deliveryFailures,
	}, nil
}

// RecordJob records one finished job.
func (m *Metrics) RecordJob(ctx context.Context, status, source string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("source", source),
	)
	m.jobsTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordDeliveryFailure records one failed outcome delivery.
func (m *Metrics) RecordDeliveryFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.deliveryFailures.Add(ctx, 1)
}
