package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// LedgerMutationsTotal counts ledger mutations by operation and outcome.
	LedgerMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Total number of ledger mutations",
		},
		[]string{"operation", "outcome"},
	)

	// LedgerTxDuration measures ledger transaction duration.
	LedgerTxDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_tx_duration_seconds",
			Help:    "Ledger transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// LockTimeoutsTotal counts account lock waits that timed out.
	LockTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_lock_timeouts_total",
			Help: "Total number of account lock wait timeouts",
		},
	)

	// AlertsUpserted counts alert upserts by type.
	AlertsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_upserted_total",
			Help: "Total number of alerts created or refreshed",
		},
		[]string{"alert_type"},
	)

	// AlertEvaluationDuration measures per-tenant alert evaluation duration.
	AlertEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alert_evaluation_duration_seconds",
			Help:    "Per-tenant alert evaluation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)
