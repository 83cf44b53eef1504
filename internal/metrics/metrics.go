package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration submissions by result",
		},
		[]string{"result"},
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifications_total",
			Help: "Verification transitions by outcome and method",
		},
		[]string{"outcome", "method"},
	)

	StoreRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_total",
			Help: "Store operations retried after a transient error",
		},
		[]string{"op"},
	)

	StatementLinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_lines_total",
			Help: "Statement lines seen by the parser, by disposition",
		},
		[]string{"disposition"},
	)

	ReconcileOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_outcomes_total",
			Help: "Reconciliation match outcomes",
		},
		[]string{"outcome"},
	)

	CapacityAlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "capacity_alerts_total",
			Help: "Registrations that left an event at or above 90% of capacity",
		},
	)

	FulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillments_total",
			Help: "Ticket issuance attempts by result",
		},
		[]string{"result"},
	)

	// Recorded by the request logger middleware.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_duration_seconds",
			Help:    "Duration of statement reconciliation requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Register registers all collectors with the default registry.
func Register() {
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(VerificationsTotal)
	prometheus.MustRegister(StoreRetriesTotal)
	prometheus.MustRegister(StatementLinesTotal)
	prometheus.MustRegister(ReconcileOutcomesTotal)
	prometheus.MustRegister(CapacityAlertsTotal)
	prometheus.MustRegister(FulfillmentsTotal)
	prometheus.MustRegister(ReconcileDuration)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
