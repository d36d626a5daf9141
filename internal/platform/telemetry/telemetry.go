// Package telemetry exposes Prometheus instrumentation for the ledger
// gateway.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "medtrace_ledger_operations_total",
		Help: "Ledger contract operations by name and outcome.",
	},
	[]string{"operation", "outcome"},
)

// RecordOperation counts one contract operation invocation.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
