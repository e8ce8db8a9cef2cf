package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmrzaf/empgen/internal/domain"
)

type Metrics struct {
	registry         *prometheus.Registry
	recordsGenerated prometheus.Counter
	exports          *prometheus.CounterVec
	exportDuration   prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		recordsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "empgen",
			Name:      "records_generated_total",
			Help:      "Employee records produced by the generator.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "empgen",
			Name:      "exports_total",
			Help:      "Spreadsheet exports by outcome.",
		}, []string{"status"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "empgen",
			Name:      "export_duration_seconds",
			Help:      "Time spent writing a workbook.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	reg.MustRegister(m.recordsGenerated, m.exports, m.exportDuration)
	return m
}

func (m *Metrics) ObserveGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsGenerated.Add(float64(n))
}

func (m *Metrics) ObserveExport(status domain.ExportStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(status)).Inc()
	m.exportDuration.Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
