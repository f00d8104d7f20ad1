// Package observe provides application-wide observability primitives for
// Readling: OpenTelemetry metrics, tracing helpers, and the Prometheus
// exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API and scraped via
// the standard /metrics endpoint. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Readling metrics.
const meterName = "github.com/readling/readling"

// Metrics holds all OpenTelemetry metric instruments for the application.
// The underlying OTel types handle their own synchronisation.
type Metrics struct {
	// --- Provider latency histograms ---

	// StoryDuration tracks storybook generation latency.
	StoryDuration metric.Float64Histogram

	// IllustrationDuration tracks per-page illustration latency.
	IllustrationDuration metric.Float64Histogram

	// AssessDuration tracks pronunciation assessment latency. Use with
	// attribute.String("source", "llm"|"local").
	AssessDuration metric.Float64Histogram

	// HTTPRequestDuration tracks HTTP request handling latency.
	HTTPRequestDuration metric.Float64Histogram

	// --- Counters ---

	// RecognitionEvents counts recognition events consumed by reading
	// sessions. Use with attribute.String("kind", "interim"|"final"|"error").
	RecognitionEvents metric.Int64Counter

	// HighlightAdvances counts forward movements of the live highlight.
	HighlightAdvances metric.Int64Counter

	// BooksGenerated counts completed storybook generations.
	BooksGenerated metric.Int64Counter

	// ReadingsScored counts completed page assessments. Use with
	// attribute.String("source", "llm"|"local").
	ReadingsScored metric.Int64Counter

	// ProviderErrors counts provider errors. Use with
	// attribute.String("provider", ...).
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveReadingSessions tracks the number of live websocket reading
	// sessions.
	ActiveReadingSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Provider
// calls span from sub-second assessments to minute-long image renders.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StoryDuration, err = m.Float64Histogram("readling.story.duration",
		metric.WithDescription("Latency of storybook generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IllustrationDuration, err = m.Float64Histogram("readling.illustration.duration",
		metric.WithDescription("Latency of page illustration rendering."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AssessDuration, err = m.Float64Histogram("readling.assess.duration",
		metric.WithDescription("Latency of pronunciation assessment by source."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("readling.http.request.duration",
		metric.WithDescription("HTTP request handling latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.RecognitionEvents, err = m.Int64Counter("readling.recognition.events",
		metric.WithDescription("Recognition events consumed by reading sessions, by kind."),
	); err != nil {
		return nil, err
	}
	if met.HighlightAdvances, err = m.Int64Counter("readling.highlight.advances",
		metric.WithDescription("Forward movements of the live reading highlight."),
	); err != nil {
		return nil, err
	}
	if met.BooksGenerated, err = m.Int64Counter("readling.books.generated",
		metric.WithDescription("Completed storybook generations."),
	); err != nil {
		return nil, err
	}
	if met.ReadingsScored, err = m.Int64Counter("readling.readings.scored",
		metric.WithDescription("Completed page assessments by source."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("readling.provider.errors",
		metric.WithDescription("Provider errors by provider name."),
	); err != nil {
		return nil, err
	}

	if met.ActiveReadingSessions, err = m.Int64UpDownCounter("readling.active_reading_sessions",
		metric.WithDescription("Number of live websocket reading sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordRecognitionEvent increments the recognition-event counter for the
// given event kind ("interim", "final", "error").
func (m *Metrics) RecordRecognitionEvent(ctx context.Context, kind string) {
	m.RecognitionEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordReadingScored increments the scored-readings counter for the given
// assessment source ("llm" or "local").
func (m *Metrics) RecordReadingScored(ctx context.Context, source string) {
	m.ReadingsScored.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordProviderError increments the provider-error counter for the given
// provider name ("story", "art", "assess").
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call from the global meter provider. Panics if instrument
// creation fails (does not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
