// Package metrics holds the prometheus instrumentation of the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medgraph/medgraph/internal/logging"
)

// Metrics carries the pipeline collectors.  Collectors work unregistered, so
// components always increment them and Register decides whether they are
// exposed.
type Metrics struct {
	DrugsLoaded         prometheus.Gauge
	InteractionsLoaded  prometheus.Counter
	MedicationsMapped   *prometheus.CounterVec
	MedicationsUnmapped prometheus.Counter
	EdgeBatches         *prometheus.CounterVec
	RunDuration         prometheus.Histogram
}

// New builds the collector set.
func New() *Metrics {
	return &Metrics{
		DrugsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "medgraph",
			Name:      "reference_drugs_loaded",
			Help:      "Reference drugs in the loaded vocabulary.",
		}),
		InteractionsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medgraph",
			Name:      "interactions_loaded_total",
			Help:      "Interaction edges merged into the graph.",
		}),
		MedicationsMapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medgraph",
			Name:      "medications_mapped_total",
			Help:      "Medications mapped, labelled by match method.",
		}, []string{"method"}),
		MedicationsUnmapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medgraph",
			Name:      "medications_unmapped_total",
			Help:      "Medications no strategy could resolve above threshold.",
		}),
		EdgeBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medgraph",
			Name:      "edge_batches_total",
			Help:      "Mapping edge batches written, labelled by result.",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "medgraph",
			Name:      "mapping_run_duration_seconds",
			Help:      "Wall time of complete mapping runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// Register attaches every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.DrugsLoaded,
		m.InteractionsLoaded,
		m.MedicationsMapped,
		m.MedicationsUnmapped,
		m.EdgeBatches,
		m.RunDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Serve registers the collectors on a fresh registry and exposes them on
// addr/metrics in a background goroutine.  Errors are logged, not fatal: a
// busy port must not stop a load run.
func (m *Metrics) Serve(addr string, log logging.Logger) {
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		log.Warn("metrics registration failed", logging.Err(err))
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics listener stopped", logging.Err(err))
		}
	}()
	log.Info("metrics listening", logging.String("addr", addr))
}
