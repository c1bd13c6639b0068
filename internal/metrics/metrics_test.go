package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/api/v1/payments/history", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/payments/history", "200"))
	assert.Equal(t, float64(1), count)
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/api/v1/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/api/v1/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/api/v1/auth/login", "401", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/auth/login", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/auth/login", "401"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordPaymentInitiated(t *testing.T) {
	PaymentsInitiatedTotal.Reset()

	RecordPaymentInitiated("momo", "accepted")
	RecordPaymentInitiated("momo", "accepted")
	RecordPaymentInitiated("orange", "failed")

	momoAccepted := testutil.ToFloat64(PaymentsInitiatedTotal.WithLabelValues("momo", "accepted"))
	orangeFailed := testutil.ToFloat64(PaymentsInitiatedTotal.WithLabelValues("orange", "failed"))

	assert.Equal(t, float64(2), momoAccepted)
	assert.Equal(t, float64(1), orangeFailed)
}

func TestRecordReconciliation(t *testing.T) {
	PaymentReconciliationsTotal.Reset()

	RecordReconciliation("momo", "successful")
	RecordReconciliation("momo", "failed")
	RecordReconciliation("momo", "successful")

	success := testutil.ToFloat64(PaymentReconciliationsTotal.WithLabelValues("momo", "successful"))
	failed := testutil.ToFloat64(PaymentReconciliationsTotal.WithLabelValues("momo", "failed"))

	assert.Equal(t, float64(2), success)
	assert.Equal(t, float64(1), failed)
}

func TestRecordWebhookReplay(t *testing.T) {
	WebhookReplaysTotal.Reset()

	RecordWebhookReplay("orange")
	RecordWebhookReplay("orange")

	count := testutil.ToFloat64(WebhookReplaysTotal.WithLabelValues("orange"))
	assert.Equal(t, float64(2), count)
}

func TestRecordExpiredPayments(t *testing.T) {
	testCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeserve_payments_expired_total_test",
			Help: "Payments moved to expired by the sweep",
		},
	)

	oldCounter := PaymentsExpiredTotal
	PaymentsExpiredTotal = testCounter
	defer func() { PaymentsExpiredTotal = oldCounter }()

	RecordExpiredPayments(3)
	RecordExpiredPayments(2)

	assert.Equal(t, float64(5), testutil.ToFloat64(testCounter))
}

func TestRecordEarning(t *testing.T) {
	earnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homeserve_earnings_processed_total_test",
		Help: "Earning/commission pairs written to the ledger",
	})
	commission := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "homeserve_commission_amount_total_test",
		Help: "Cumulative commission amount collected, in XAF",
	})

	oldEarnings, oldCommission := EarningsProcessedTotal, CommissionAmountTotal
	EarningsProcessedTotal, CommissionAmountTotal = earnings, commission
	defer func() { EarningsProcessedTotal, CommissionAmountTotal = oldEarnings, oldCommission }()

	RecordEarning(2500)
	RecordEarning(1000)

	assert.Equal(t, float64(2), testutil.ToFloat64(earnings))
	assert.Equal(t, float64(3500), testutil.ToFloat64(commission))
}

func TestRecordWithdrawal(t *testing.T) {
	WithdrawalsTotal.Reset()

	RecordWithdrawal("accepted")
	RecordWithdrawal("rejected")
	RecordWithdrawal("accepted")

	accepted := testutil.ToFloat64(WithdrawalsTotal.WithLabelValues("accepted"))
	rejected := testutil.ToFloat64(WithdrawalsTotal.WithLabelValues("rejected"))

	assert.Equal(t, float64(2), accepted)
	assert.Equal(t, float64(1), rejected)
}

func TestRecordNotification(t *testing.T) {
	NotificationsTotal.Reset()

	RecordNotification("payment_receipt", "success")
	RecordNotification("payment_receipt", "failed")

	success := testutil.ToFloat64(NotificationsTotal.WithLabelValues("payment_receipt", "success"))
	failed := testutil.ToFloat64(NotificationsTotal.WithLabelValues("payment_receipt", "failed"))

	assert.Equal(t, float64(1), success)
	assert.Equal(t, float64(1), failed)
}

func TestNotificationQueueLength(t *testing.T) {
	NotificationQueueLength.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(NotificationQueueLength))

	NotificationQueueLength.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(NotificationQueueLength))
}
