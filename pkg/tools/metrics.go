package tools

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records one counter increment and one duration sample per
// invocation. A nil *Metrics records nothing.
type Metrics struct {
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	inv, err := meter.Int64Counter("toolbridge.tool.invocations",
		metric.WithDescription("Number of tool invocations by outcome"),
	)
	if err != nil {
		return nil, err
	}
	dur, err := meter.Float64Histogram("toolbridge.tool.duration",
		metric.WithDescription("Duration of tool invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{invocations: inv, duration: dur}, nil
}

func (m *Metrics) Record(ctx context.Context, adapter, tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("adapter", adapter),
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	)
	m.invocations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}
