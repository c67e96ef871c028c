package smhi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/obsgrid/obsgrid/internal/observation"
)

const meterName = "github.com/obsgrid/obsgrid/internal/observation/smhi"

// clientMetrics instruments upstream fetches and archive parsing. Without a
// configured meter provider the instruments are no-ops.
type clientMetrics struct {
	fetchDuration   metric.Float64Histogram
	fetchTotal      metric.Int64Counter
	archiveReadings metric.Int64Counter
}

func newClientMetrics() *clientMetrics {
	meter := otel.Meter(meterName)

	// Instrument names are static, so creation cannot fail in practice.
	fetchDuration, _ := meter.Float64Histogram(
		"upstream.fetch.duration",
		metric.WithDescription("Duration of upstream fetches in seconds"),
		metric.WithUnit("s"),
	)
	fetchTotal, _ := meter.Int64Counter(
		"upstream.fetch.total",
		metric.WithDescription("Total number of upstream fetches"),
		metric.WithUnit("{request}"),
	)
	archiveReadings, _ := meter.Int64Counter(
		"upstream.archive.readings",
		metric.WithDescription("Readings parsed out of archive documents"),
		metric.WithUnit("{reading}"),
	)

	return &clientMetrics{
		fetchDuration:   fetchDuration,
		fetchTotal:      fetchTotal,
		archiveReadings: archiveReadings,
	}
}

// recordFetch records one upstream fetch, labelled by operation and network.
func (m *clientMetrics) recordFetch(ctx context.Context, operation string, network observation.Network, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("upstream", ProviderName),
		attribute.String("operation", operation),
		attribute.String("network", string(network)),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	opts := metric.WithAttributes(attrs...)
	m.fetchDuration.Record(ctx, time.Since(start).Seconds(), opts)
	m.fetchTotal.Add(ctx, 1, opts)
}

// recordArchiveReadings records how many readings an archive document
// yielded after parsing.
func (m *clientMetrics) recordArchiveReadings(ctx context.Context, network observation.Network, count int) {
	m.archiveReadings.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("upstream", ProviderName),
		attribute.String("network", string(network)),
	))
}
