// Package observe provides the OpenTelemetry metrics, tracing and
// trace-aware logging used across parseltongue.
//
// Metrics are recorded through the OTel Metrics API and exposed for scraping
// by the Prometheus exporter bridge set up in [InitProvider]. Components take
// an optional *[Metrics]; every Record method is a no-op on a nil receiver so
// metrics can be left out entirely in tests and one-shot CLI runs. Tests that
// inspect metrics should use [NewMetrics] with their own
// [metric.MeterProvider].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all parseltongue metrics.
const meterName = "github.com/MrWong99/parseltongue"

// Metrics holds the metric instruments of the application. The OTel types
// handle their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// ActionDuration tracks menu action execution time. Attribute: action.
	ActionDuration metric.Float64Histogram

	// STTDuration tracks time from listening start to final transcript.
	STTDuration metric.Float64Histogram

	// TTSDuration tracks speech synthesis and playback time.
	TTSDuration metric.Float64Histogram

	// --- Counters ---

	// Utterances counts prompts answered by the user. Attribute: source
	// (console, voice).
	Utterances metric.Int64Counter

	// Resolutions counts choice resolutions. Attributes: menu, method.
	Resolutions metric.Int64Counter

	// NoMatches counts utterances that matched no choice. Attribute: menu.
	NoMatches metric.Int64Counter

	// Actions counts action invocations. Attributes: action, status.
	Actions metric.Int64Counter

	// ThesaurusLookups counts dictionary lookups. Attribute: status
	// (hit, miss, error).
	ThesaurusLookups metric.Int64Counter

	// --- Gauges ---

	// MenuDepth is the current menu nesting depth.
	MenuDepth metric.Int64UpDownCounter

	// --- HTTP ---

	// HTTPRequestDuration tracks requests served by the metrics endpoint.
	// Attributes: method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds. Spoken interaction sits
// between a few hundred milliseconds and tens of seconds.
var latencyBuckets = []float64{
	0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ActionDuration, err = m.Float64Histogram("parseltongue.action.duration",
		metric.WithDescription("Latency of menu action execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.STTDuration, err = m.Float64Histogram("parseltongue.stt.duration",
		metric.WithDescription("Latency from listen start to final transcript."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("parseltongue.tts.duration",
		metric.WithDescription("Latency of speech synthesis and playback."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.Utterances, err = m.Int64Counter("parseltongue.utterances",
		metric.WithDescription("Total user utterances by input source."),
	); err != nil {
		return nil, err
	}
	if met.Resolutions, err = m.Int64Counter("parseltongue.resolutions",
		metric.WithDescription("Total choice resolutions by menu and method."),
	); err != nil {
		return nil, err
	}
	if met.NoMatches, err = m.Int64Counter("parseltongue.no_matches",
		metric.WithDescription("Total utterances that matched no choice, by menu."),
	); err != nil {
		return nil, err
	}
	if met.Actions, err = m.Int64Counter("parseltongue.actions",
		metric.WithDescription("Total action invocations by action and status."),
	); err != nil {
		return nil, err
	}
	if met.ThesaurusLookups, err = m.Int64Counter("parseltongue.thesaurus.lookups",
		metric.WithDescription("Total thesaurus lookups by status."),
	); err != nil {
		return nil, err
	}

	if met.MenuDepth, err = m.Int64UpDownCounter("parseltongue.menu.depth",
		metric.WithDescription("Current menu nesting depth."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("parseltongue.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics], created on first call
// from [otel.GetMeterProvider]. Panics if instrument creation fails, which
// does not happen with the global provider.
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

// Attr is shorthand for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordUtterance counts one answered prompt.
func (m *Metrics) RecordUtterance(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.Utterances.Add(ctx, 1, metric.WithAttributes(Attr("source", source)))
}

// RecordResolution counts a resolved utterance. Unmatched resolutions also
// increment NoMatches.
func (m *Metrics) RecordResolution(ctx context.Context, menu, method string) {
	if m == nil {
		return
	}
	m.Resolutions.Add(ctx, 1, metric.WithAttributes(
		Attr("menu", menu),
		Attr("method", method),
	))
	if method == "unmatched" {
		m.NoMatches.Add(ctx, 1, metric.WithAttributes(Attr("menu", menu)))
	}
}

// RecordAction counts one action invocation and its duration.
func (m *Metrics) RecordAction(ctx context.Context, action, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Actions.Add(ctx, 1, metric.WithAttributes(
		Attr("action", action),
		Attr("status", status),
	))
	m.ActionDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("action", action)))
}

// RecordThesaurusLookup counts one thesaurus lookup.
func (m *Metrics) RecordThesaurusLookup(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.ThesaurusLookups.Add(ctx, 1, metric.WithAttributes(Attr("status", status)))
}

// RecordSTT records the latency of one transcription.
func (m *Metrics) RecordSTT(ctx context.Context, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.STTDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("provider", provider)))
}

// RecordTTS records the latency of one announcement.
func (m *Metrics) RecordTTS(ctx context.Context, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.TTSDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("provider", provider)))
}

// EnterMenu increments the menu depth gauge. The returned func decrements it.
func (m *Metrics) EnterMenu(ctx context.Context) (leave func()) {
	if m == nil {
		return func() {}
	}
	m.MenuDepth.Add(ctx, 1)
	return func() { m.MenuDepth.Add(ctx, -1) }
}
