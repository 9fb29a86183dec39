// Package metrics defines the Prometheus collectors the web shell updates.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xlplot"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	Uploads      *prometheus.CounterVec
	Aggregations *prometheus.CounterVec
	Downloads    *prometheus.CounterVec
	LoadedRows   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Spreadsheet uploads by outcome.",
		}, []string{"outcome"}),
		Aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Group-and-sum requests by outcome.",
		}, []string{"outcome"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Export downloads by kind and outcome.",
		}, []string{"kind", "outcome"}),
		LoadedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loaded_rows",
			Help:      "Data rows per successfully loaded spreadsheet.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		}),
	}
	m.registry.MustRegister(
		m.Uploads,
		m.Aggregations,
		m.Downloads,
		m.LoadedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome is the outcome label for err.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
