package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeserve_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsInitiatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_payments_initiated_total",
			Help: "Total number of payment initiation attempts",
		},
		[]string{"rail", "result"},
	)

	PaymentReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_payment_reconciliations_total",
			Help: "Webhook reconciliations applied, by rail and resulting status",
		},
		[]string{"rail", "status"},
	)

	WebhookReplaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_webhook_replays_total",
			Help: "Webhook deliveries ignored because the payment was already terminal",
		},
		[]string{"rail"},
	)

	PaymentsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserve_payments_expired_total",
			Help: "Payments moved to expired by the sweep",
		},
	)

	EarningsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserve_earnings_processed_total",
			Help: "Earning/commission pairs written to the ledger",
		},
	)

	CommissionAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserve_commission_amount_total",
			Help: "Cumulative commission amount collected, in XAF",
		},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_withdrawals_total",
			Help: "Withdrawal requests, by result",
		},
		[]string{"result"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"category"},
	)

	BookingAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserve_booking_assignments_total",
			Help: "Bookings assigned to a provider by an admin",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeserve_notifications_total",
			Help: "Notification jobs, by type and status",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeserve_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordPaymentInitiated(rail, result string) {
	PaymentsInitiatedTotal.WithLabelValues(rail, result).Inc()
}

func RecordReconciliation(rail, status string) {
	PaymentReconciliationsTotal.WithLabelValues(rail, status).Inc()
}

func RecordWebhookReplay(rail string) {
	WebhookReplaysTotal.WithLabelValues(rail).Inc()
}

func RecordExpiredPayments(count int) {
	PaymentsExpiredTotal.Add(float64(count))
}

func RecordEarning(commission int64) {
	EarningsProcessedTotal.Inc()
	CommissionAmountTotal.Add(float64(commission))
}

func RecordWithdrawal(result string) {
	WithdrawalsTotal.WithLabelValues(result).Inc()
}

func RecordBooking(category string) {
	BookingsTotal.WithLabelValues(category).Inc()
}

func RecordAssignment() {
	BookingAssignmentsTotal.Inc()
}

func RecordNotification(jobType, status string) {
	NotificationsTotal.WithLabelValues(jobType, status).Inc()
}
