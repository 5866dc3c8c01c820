// Package metrics exposes Prometheus counters for the fulfillment workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the workflow counters with the Prometheus registry that
// serves them.
type Registry struct {
	reg *prometheus.Registry

	OrdersCreated       prometheus.Counter
	BatchesReceived     prometheus.Counter
	TransitionsApplied  *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	StockConflicts      prometheus.Counter
	VersionConflicts    prometheus.Counter
}

// NewRegistry creates and registers the workflow metrics.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{Name: "fulfillment_orders_created_total"})
	batchesReceived := prometheus.NewCounter(prometheus.CounterOpts{Name: "fulfillment_batches_received_total"})
	transitionsApplied := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fulfillment_transitions_applied_total"},
		[]string{"status"},
	)
	transitionsRejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fulfillment_transitions_rejected_total"},
		[]string{"reason"},
	)
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "fulfillment_stock_conflicts_total"})
	versionConflicts := prometheus.NewCounter(prometheus.CounterOpts{Name: "fulfillment_version_conflicts_total"})

	r.MustRegister(ordersCreated, batchesReceived, transitionsApplied, transitionsRejected, stockConflicts, versionConflicts)
	return &Registry{
		reg:                 r,
		OrdersCreated:       ordersCreated,
		BatchesReceived:     batchesReceived,
		TransitionsApplied:  transitionsApplied,
		TransitionsRejected: transitionsRejected,
		StockConflicts:      stockConflicts,
		VersionConflicts:    versionConflicts,
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
