// Package metrics holds the Prometheus collectors for the dashboard service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the service's private registry; collectors are registered in init
var Registry = prometheus.NewRegistry()

var (
	// DocumentFetches counts document fetches by document and result (ok, error)
	DocumentFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_document_fetches_total",
			Help: "Total number of data document fetches by document and result",
		},
		[]string{"document", "result"},
	)

	// CacheFallbacks counts documents served from the fallback cache after a failed fetch
	CacheFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_document_cache_fallbacks_total",
			Help: "Total number of documents served from cache after a network failure",
		},
		[]string{"document", "result"},
	)

	// DataQualityWarnings counts out-of-range values found while normalizing
	DataQualityWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_data_quality_warnings_total",
			Help: "Total number of data quality warnings by field",
		},
		[]string{"field"},
	)

	// Refreshes counts standings refresh cycles
	Refreshes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_standings_refreshes_total",
			Help: "Total number of standings refresh cycles",
		},
	)

	// RefreshDuration observes how long one four-document load takes
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_standings_refresh_duration_seconds",
			Help:    "Duration of a full four-document load in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// LedgerOperations counts intake ledger operations by operation and result
	LedgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_ledger_operations_total",
			Help: "Total number of intake ledger operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// GoalsReached counts edge-triggered goal crossings
	GoalsReached = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_goals_reached_total",
			Help: "Total number of times a daily goal was crossed",
		},
	)

	// ActiveClients tracks connected websocket clients
	ActiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_ws_active_clients",
			Help: "Number of currently connected websocket clients",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		DocumentFetches,
		CacheFallbacks,
		DataQualityWarnings,
		Refreshes,
		RefreshDuration,
		LedgerOperations,
		GoalsReached,
		ActiveClients,
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
