package metrics

import "github.com/prometheus/client_golang/prometheus"

// Skip reason labels used by RemindersSkipped.
const (
	ReasonSnoozed   = "snoozed"
	ReasonThrottled = "throttled"
	ReasonUnbound   = "unbound_channel"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "herald_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	AlertsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_alerts_created_total",
			Help: "Number of alerts created through the catalog",
		},
	)

	RemindersDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_reminders_delivered_total",
			Help: "Reminders delivered and recorded in the ledger",
		},
	)

	RemindersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "herald_reminders_skipped_total",
			Help: "Reminders withheld, by reason",
		},
		[]string{"reason"},
	)

	RemindersFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "herald_reminders_failed_total",
			Help: "Reminder deliveries that failed at the channel",
		},
	)

	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "herald_dispatch_run_duration_seconds",
			Help:    "Duration of reminder dispatch runs",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Init() {
	prometheus.MustRegister(
		RequestCount,
		RequestDuration,
		AlertsCreated,
		RemindersDelivered,
		RemindersSkipped,
		RemindersFailed,
		DispatchDuration,
	)
}
