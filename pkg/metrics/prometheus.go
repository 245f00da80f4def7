package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal     *prometheus.CounterVec
	lastPrice       prometheus.Gauge
	latency         *prometheus.HistogramVec
	recommendations *prometheus.CounterVec
	narratives      *prometheus.CounterVec
	events          *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the process-wide recorder registered with the default Prometheus registry.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegisterer creates a recorder registered on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "oracle_btc_last_price_usd",
				Help: "Last fetched BTC price in USD",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oracle_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		recommendations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_recommendations_total",
				Help: "Recommendations produced, by timing and provenance",
			},
			[]string{"timing", "source"},
		),
		narratives: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_market_analyses_total",
				Help: "Market narratives produced, by provenance",
			},
			[]string{"source"},
		),
		events: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_recommendation_events_total",
				Help: "Recommendation events consumed from Kafka, by timing and provenance",
			},
			[]string{"timing", "source"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last fetched BTC price.
func (r *Recorder) RecordLastPrice(price float64) {
	r.lastPrice.Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordRecommendation counts a recommendation produced by the engine.
func (r *Recorder) RecordRecommendation(timing, source string) {
	r.recommendations.WithLabelValues(timing, source).Inc()
}

// RecordNarrative counts a market narrative.
func (r *Recorder) RecordNarrative(source string) {
	r.narratives.WithLabelValues(source).Inc()
}

// RecordEvent counts a consumed recommendation event.
func (r *Recorder) RecordEvent(timing, source string) {
	r.events.WithLabelValues(timing, source).Inc()
}
