// Package metrics declares the Prometheus collectors exported by the server
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerMutations counts ledger writes by operation and outcome
	LedgerMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Ledger mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// WriteConflicts counts compare-and-set failures that triggered a re-read
	WriteConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_write_conflicts_total",
			Help: "Optimistic concurrency conflicts by operation",
		},
		[]string{"operation"},
	)

	// RecomputedRecords observes how many records each full recompute walked
	RecomputedRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_recomputed_records",
			Help:    "Number of monthly records re-derived per recompute",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// RPCRequests counts gRPC calls by method and status code
	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rpc_requests_total",
			Help: "gRPC requests by method and code",
		},
		[]string{"method", "code"},
	)
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)
