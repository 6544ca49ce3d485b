// Package metrics records pipeline run metrics for Prometheus.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rotisserie/eris"
)

// Reasons a calendar day is not collected.
const (
	ReasonWeekend        = "weekend"
	ReasonNotFound       = "not_found"
	ReasonFetchError     = "fetch_error"
	ReasonMalformed      = "malformed"
	ReasonColumnMismatch = "column_mismatch"
)

// Recorder holds the metrics of one pipeline run. A nil Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	DaysScanned     prometheus.Counter
	DaysSkipped     *prometheus.CounterVec
	TablesCollected prometheus.Counter
	SinkDuration    *prometheus.HistogramVec
	LastRunSuccess  prometheus.Gauge
}

// New registers the run metrics on a dedicated registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		DaysScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotes_days_scanned_total",
			Help: "Calendar days visited by the backward walk",
		}),
		DaysSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_days_skipped_total",
			Help: "Calendar days that produced no table, by reason",
		}, []string{"reason"}),
		TablesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotes_tables_collected_total",
			Help: "Business days collected into the dataset",
		}),
		SinkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quotes_sink_duration_seconds",
			Help:    "Time spent writing the dataset to each sink",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"sink"}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quotes_last_run_success",
			Help: "1 if the last run completed, 0 if it failed",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Scanned() {
	if r == nil {
		return
	}
	r.DaysScanned.Inc()
}

func (r *Recorder) Skipped(reason string) {
	if r == nil {
		return
	}
	r.DaysSkipped.WithLabelValues(reason).Inc()
}

func (r *Recorder) Collected() {
	if r == nil {
		return
	}
	r.TablesCollected.Inc()
}

func (r *Recorder) ObserveSink(sink string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.SinkDuration.WithLabelValues(sink).Observe(elapsed.Seconds())
}

func (r *Recorder) RunFinished(success bool) {
	if r == nil {
		return
	}
	if success {
		r.LastRunSuccess.Set(1)
		return
	}
	r.LastRunSuccess.Set(0)
}

// Push sends every metric to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}

	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return eris.Wrap(err, "metrics: push")
	}

	return nil
}
