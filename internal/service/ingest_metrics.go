package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics provides observability for record ingestion.
// Tracks applied records by kind and outcome and per-record apply latency.
type IngestMetrics struct {
	Records       *prometheus.CounterVec
	ApplyDuration *prometheus.HistogramVec
	Runs          prometheus.Counter
}

// NewIngestMetrics registers the ingestion metrics with reg
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	factory := promauto.With(reg)
	return &IngestMetrics{
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poliwatch_ingest_records_total",
			Help: "Total number of ingested records by kind and outcome",
		}, []string{"kind", "outcome"}),
		ApplyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poliwatch_ingest_apply_duration_seconds",
			Help:    "Duration of applying one record, including its transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
		Runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "poliwatch_ingest_runs_total",
			Help: "Total number of ingestion runs started",
		}),
	}
}

// ObserveRecord records the outcome of one record.
// Call with time.Now() at the start of the apply.
func (m *IngestMetrics) ObserveRecord(kind, outcome string, start time.Time) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.Records.WithLabelValues(kind, outcome).Inc()
	m.ApplyDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// IncrementRuns records the start of an ingestion run
func (m *IngestMetrics) IncrementRuns() {
	if m == nil {
		return
	}
	m.Runs.Inc()
}
