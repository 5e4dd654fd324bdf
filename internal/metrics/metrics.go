// Package metrics defines the Prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitty"

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	ExpensesRecorded  prometheus.Counter
	SettlementsTotal  prometheus.Counter
	ReconcileRuns     *prometheus.CounterVec
	BalanceDrifts     prometheus.Counter
	EventPublishFails prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ExpensesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_recorded_total",
			Help:      "Expenses created, settlements excluded.",
		}),
		SettlementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Settle-up transfers recorded.",
		}),
		ReconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Balance reconciliation runs by outcome.",
		}, []string{"outcome"}),
		BalanceDrifts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_drifts_total",
			Help:      "Cached friend balances corrected by reconciliation.",
		}),
		EventPublishFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Ledger events that could not be published.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RPCRequests,
		m.RPCDuration,
		m.ExpensesRecorded,
		m.SettlementsTotal,
		m.ReconcileRuns,
		m.BalanceDrifts,
		m.EventPublishFails,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(seconds)
}

// ExpenseRecorded counts a new expense or settlement.
func (m *Metrics) ExpenseRecorded(settlement bool) {
	if m == nil {
		return
	}
	if settlement {
		m.SettlementsTotal.Inc()
		return
	}
	m.ExpensesRecorded.Inc()
}

// ReconcileFinished records a reconciliation run and how many balances it
// corrected. A failed run may still have corrected other owners.
func (m *Metrics) ReconcileFinished(err error, drifts int) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ReconcileRuns.WithLabelValues(status).Inc()
	m.BalanceDrifts.Add(float64(drifts))
}

// PublishFailed counts a ledger event that was dropped.
func (m *Metrics) PublishFailed() {
	if m == nil {
		return
	}
	m.EventPublishFails.Inc()
}
