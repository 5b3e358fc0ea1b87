// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline and the article store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline instruments ingestion outcomes and stage latencies. A nil
// *Pipeline is valid and records nothing, so callers don't need to guard
// every observation site.
type Pipeline struct {
	ingests       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	articles      prometheus.Gauge
}

// NewPipeline registers pipeline metrics with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	factory := promauto.With(reg)
	return &Pipeline{
		ingests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "readinglog_ingests_total",
			Help: "Ingestion attempts by terminal outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "readinglog_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "readinglog_ingests_in_flight",
			Help: "Ingestions currently executing.",
		}),
		articles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "readinglog_articles",
			Help: "Articles currently stored.",
		}),
	}
}

// ObserveIngest records a terminal ingestion outcome, e.g. "stored",
// "duplicate" or an error kind.
func (p *Pipeline) ObserveIngest(outcome string) {
	if p == nil {
		return
	}
	p.ingests.WithLabelValues(outcome).Inc()
}

// ObserveStage records the duration of one pipeline stage in seconds.
func (p *Pipeline) ObserveStage(stage string, seconds float64) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// IngestStarted marks an ingestion as in flight.
func (p *Pipeline) IngestStarted() {
	if p == nil {
		return
	}
	p.inFlight.Inc()
}

// IngestFinished marks an in-flight ingestion as done.
func (p *Pipeline) IngestFinished() {
	if p == nil {
		return
	}
	p.inFlight.Dec()
}

// SetArticleCount updates the stored-article gauge.
func (p *Pipeline) SetArticleCount(n int64) {
	if p == nil {
		return
	}
	p.articles.Set(float64(n))
}
