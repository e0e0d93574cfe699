package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Shift metrics
	ShiftsOpened  prometheus.Counter
	ShiftsClosed  prometheus.Counter
	OpenShiftCash prometheus.Gauge

	// Transaction metrics
	TransactionsPosted  *prometheus.CounterVec
	TransactionAmount   *prometheus.HistogramVec
	RefundsPosted       prometheus.Counter
	IdempotentReplays   prometheus.Counter
	IdempotencyRaceWins prometheus.Counter

	// Failure metrics
	LedgerConflicts     *prometheus.CounterVec
	ConsistencyFailures prometheus.Counter

	// Ledger operation latency
	OperationDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
	AuditLogFailures prometheus.Counter

	// Outbox relay metrics
	EventsPublished *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ShiftsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_shifts_opened_total",
			Help: "Total number of shifts opened",
		}),
		ShiftsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_shifts_closed_total",
			Help: "Total number of shifts closed",
		}),
		OpenShiftCash: factory.NewGauge(prometheus.GaugeOpts{
			Name: "clinicdesk_open_shift_cash",
			Help: "Running cash total of the open shift in minor units",
		}),

		TransactionsPosted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicdesk_transactions_posted_total",
				Help: "Total transactions posted by payment method",
			},
			[]string{"method"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicdesk_transaction_amount",
				Help:    "Absolute transaction amounts in minor units",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method"},
		),
		RefundsPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_refunds_posted_total",
			Help: "Total refund transactions posted",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_idempotent_replays_total",
			Help: "Payments answered from an existing idempotency key",
		}),
		IdempotencyRaceWins: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_idempotency_race_recoveries_total",
			Help: "Duplicate-key insert races recovered by returning the winning row",
		}),

		LedgerConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicdesk_ledger_conflicts_total",
				Help: "Ledger operations rejected as conflicts",
			},
			[]string{"operation", "reason"},
		),
		ConsistencyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_consistency_failures_total",
			Help: "Shifts whose stored totals disagreed with their transactions",
		}),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clinicdesk_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicdesk_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicdesk_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action"},
		),
		AuditLogFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicdesk_audit_log_failures_total",
			Help: "Audit writes that failed and were skipped",
		}),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clinicdesk_events_published_total",
				Help: "Outbox events relayed by result",
			},
			[]string{"event_type", "result"},
		),
	}
}
