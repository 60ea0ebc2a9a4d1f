// Package metrics exposes Prometheus instruments for the analysis engine.
// Instruments live on a dedicated registry so tests and embedded uses never
// collide with the global default registry. A nil *Metrics is a valid no-op.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vexora"

type Metrics struct {
	registry *prometheus.Registry

	// analyses counts completed analyses.
	// Labels: modality (url, text, image, video), status (safe, warning, danger)
	analyses *prometheus.CounterVec

	// duration measures end-to-end analysis latency including probes.
	// Labels: modality
	duration *prometheus.HistogramVec

	// probeFailures counts failed external probes.
	// Labels: kind (reachability, image, video)
	probeFailures *prometheus.CounterVec

	// policyReloads counts policy file reload attempts.
	// Labels: result (success, error)
	policyReloads *prometheus.CounterVec

	// batchJobs tracks batch jobs that have not finished yet.
	batchJobs prometheus.Gauge
}

// New registers every instrument on a fresh registry, together with the
// standard Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by modality and resulting status",
		}, []string{"modality", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Analysis latency in seconds, probes included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"modality"}),
		probeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_failures_total",
			Help:      "Failed reachability and media probes",
		}, []string{"kind"}),
		policyReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_reloads_total",
			Help:      "Policy reload attempts by result",
		}, []string{"result"}),
		batchJobs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_jobs_active",
			Help:      "Batch jobs that are pending or running",
		}),
	}
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(modality, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(modality, status).Inc()
	m.duration.WithLabelValues(modality).Observe(elapsed.Seconds())
}

// ProbeFailed records a failed probe of the given kind.
func (m *Metrics) ProbeFailed(kind string) {
	if m == nil {
		return
	}
	m.probeFailures.WithLabelValues(kind).Inc()
}

// PolicyReloaded records a reload attempt.
func (m *Metrics) PolicyReloaded(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.policyReloads.WithLabelValues(result).Inc()
}

// JobStarted and JobFinished track active batch jobs.
func (m *Metrics) JobStarted() {
	if m != nil {
		m.batchJobs.Inc()
	}
}

func (m *Metrics) JobFinished() {
	if m != nil {
		m.batchJobs.Dec()
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
