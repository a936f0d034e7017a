package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPC metrics
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbtxn_rpc_requests_total",
			Help: "Total number of RPC calls by op name and status",
		},
		[]string{"op", "status"},
	)

	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbtxn_rpc_request_duration_seconds",
			Help:    "RPC call duration in seconds by op name",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	RPCOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dbtxn_rpc_codec_overflow_total",
			Help: "Total number of codec buffer overflows encountered packing requests",
		},
	)

	// Transaction manager metrics
	TransactionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbtxn_transactions_active",
			Help: "Number of sessions currently in the ACTIVE transaction state",
		},
	)

	TransactionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbtxn_transaction_outcomes_total",
			Help: "Total number of transaction terminal states reached, by state",
		},
		[]string{"state"},
	)

	SavepointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbtxn_savepoints_total",
			Help: "Total number of savepoint/partial_abort operations, by kind",
		},
		[]string{"kind"},
	)

	LooseEndsRunTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbtxn_loose_ends_run_total",
			Help: "Total number of client loose-end actions executed, by kind",
		},
		[]string{"kind"},
	)

	UnilateralAbortsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dbtxn_unilateral_aborts_total",
			Help: "Total number of server-originated unilateral aborts observed",
		},
	)

	TwoPCPreparedActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbtxn_2pc_prepared_active",
			Help: "Number of transactions currently in UNACTIVE_2PC_PREPARE on this client",
		},
	)

	// Workspace metrics
	WorkspaceFlushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbtxn_workspace_flush_duration_seconds",
			Help:    "Time taken to flush the dirty workspace to the server",
			Buckets: prometheus.DefBuckets,
		},
	)

	WorkspaceDirtyObjects = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbtxn_workspace_dirty_objects",
			Help: "Number of cached objects currently marked dirty in the workspace",
		},
	)

	// Log-writer client metrics
	LogWriterLagPages = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbtxn_logwriter_lag_pages",
			Help: "server eof_lsa page id minus last_recv_pageid",
		},
	)

	LogWriterModeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbtxn_logwriter_mode_total",
			Help: "Total number of fetch rounds performed, by mode",
		},
		[]string{"mode"},
	)

	LogWriterFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbtxn_logwriter_fetch_duration_seconds",
			Help:    "Time taken per log page fetch round",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		RPCRequestsTotal,
		RPCRequestDuration,
		RPCOverflowTotal,
		TransactionsActive,
		TransactionOutcomesTotal,
		SavepointsTotal,
		LooseEndsRunTotal,
		UnilateralAbortsTotal,
		TwoPCPreparedActive,
		WorkspaceFlushDuration,
		WorkspaceDirtyObjects,
		LogWriterLagPages,
		LogWriterModeTotal,
		LogWriterFetchDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
