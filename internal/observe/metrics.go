// Package observe provides observability primitives for the ffmpeg-audio
// library: OpenTelemetry metrics, tracing, and trace-enriched structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that embedding services
// can scrape the usual /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all ffmpeg-audio metrics.
const meterName = "github.com/speech2srt/ffmpeg-audio"

// Metrics holds all OpenTelemetry metric instruments for the decode engine.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// DecodeDuration tracks the wall-clock time of a full segment read or an
	// entire stream, from spawn to reap. Use with attribute:
	//   attribute.String("mode", "read"|"stream")
	DecodeDuration metric.Float64Histogram

	// DecodedSamples counts samples handed to callers.
	DecodedSamples metric.Int64Counter

	// DecodeFailures counts failed decode runs. Use with attribute:
	//   attribute.String("kind", ...) — the error taxonomy name.
	DecodeFailures metric.Int64Counter

	// ActiveStreams tracks the number of live chunked streams (and thus
	// live ffmpeg child processes started by this library).
	ActiveStreams metric.Int64UpDownCounter
}

// durationBuckets defines histogram bucket boundaries (in seconds) sized for
// media decoding, which runs from sub-second clips to multi-hour recordings.
var durationBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60, 300, 1200,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.DecodeDuration, err = m.Float64Histogram("ffaudio.decode.duration",
		metric.WithDescription("Wall-clock duration of a decode run by mode."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.DecodedSamples, err = m.Int64Counter("ffaudio.decode.samples",
		metric.WithDescription("Total decoded samples handed to callers."),
	); err != nil {
		return nil, err
	}
	if met.DecodeFailures, err = m.Int64Counter("ffaudio.decode.failures",
		metric.WithDescription("Total failed decode runs by error kind."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("ffaudio.active_streams",
		metric.WithDescription("Number of live chunked decode streams."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
