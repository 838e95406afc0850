package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	classifyTotal    *prometheus.CounterVec
	classifyDuration *prometheus.HistogramVec
	batchInFlight    prometheus.Gauge
	batchDocuments   *prometheus.CounterVec
	adaptationTotal  *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doccat",
			Subsystem: "worker",
			Name:      "classification_total",
			Help:      "Classifications by decision outcome.",
		},
		[]string{"service", "outcome"},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "doccat",
			Subsystem: "worker",
			Name:      "classification_duration_seconds",
			Help:      "Single-document classification duration by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "doccat",
			Subsystem: "worker",
			Name:      "batch_jobs_in_flight",
			Help:      "Batch jobs currently processing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchDocuments := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doccat",
			Subsystem: "worker",
			Name:      "batch_documents_total",
			Help:      "Batch documents processed by status.",
		},
		[]string{"service", "status"},
	)
	adaptationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "doccat",
			Subsystem: "worker",
			Name:      "weight_adaptation_total",
			Help:      "Feedback events by adaptation result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(classifyTotal, classifyDuration, batchInFlight, batchDocuments, adaptationTotal)

	return &WorkerMetrics{
		registry:         registry,
		classifyTotal:    classifyTotal,
		classifyDuration: classifyDuration,
		batchInFlight:    batchInFlight,
		batchDocuments:   batchDocuments,
		adaptationTotal:  adaptationTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveClassification(service, outcome string, duration time.Duration) {
	m.classifyTotal.WithLabelValues(service, outcome).Inc()
	m.classifyDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) StartBatch() {
	m.batchInFlight.Inc()
}

func (m *WorkerMetrics) FinishBatch() {
	m.batchInFlight.Dec()
}

func (m *WorkerMetrics) CountBatchDocuments(service, status string, n int) {
	if n <= 0 {
		return
	}
	m.batchDocuments.WithLabelValues(service, status).Add(float64(n))
}

func (m *WorkerMetrics) CountAdaptation(service string, err error) {
	result := "applied"
	if err != nil {
		result = "error"
	}
	m.adaptationTotal.WithLabelValues(service, result).Inc()
}
