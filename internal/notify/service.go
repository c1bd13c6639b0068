// Package notify queues outbound messages in Redis and delivers them over
// SMTP from a background worker, so request handlers never block on mail.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"homeserve/internal/logger"
	"homeserve/internal/metrics"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"

	maxTries = 3
)

// Job types.
const (
	TypePaymentReceipt      = "payment_receipt"
	TypePaymentFailed       = "payment_failed"
	TypeBookingAssigned     = "booking_assigned"
	TypeWithdrawalRequested = "withdrawal_requested"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("marshalling notification job", "type", job.Type, "error", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		metrics.RecordNotification(job.Type, "queue_failed")
		logger.Error("queueing notification", "type", job.Type, "to", job.To, "error", err)
		return err
	}

	metrics.RecordNotification(job.Type, "queued")
	logger.Info("notification queued", "type", job.Type, "to", job.To)
	return nil
}

// Start runs the delivery loop until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad notification payload", "error", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Error("sending notification", "type", job.Type, "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}

		metrics.RecordNotification(job.Type, "failed")
		s.saveFailed(job, err)
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Info("notification sent", "type", job.Type, "to", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, sendErr error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
	logger.Error("notification moved to failed queue", "type", job.Type, "to", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) PaymentReceipt(ctx context.Context, to, name, reference string, amount int64) error {
	return s.enqueue(ctx, Job{
		Type:    TypePaymentReceipt,
		To:      to,
		Name:    name,
		Subject: "Payment received - " + reference,
		Body: fmt.Sprintf(`Hi %s,

We received your payment of %d XAF.

Reference: %s

Thank you for using HomeServe.

- HomeServe Team`, name, amount, reference),
	})
}

func (s *Service) PaymentFailed(ctx context.Context, to, name, reference, reason string) error {
	return s.enqueue(ctx, Job{
		Type:    TypePaymentFailed,
		To:      to,
		Name:    name,
		Subject: "Payment failed - " + reference,
		Body: fmt.Sprintf(`Hi %s,

Your payment could not be completed.

Reference: %s
Reason: %s

You can retry the payment from your booking page.

- HomeServe Team`, name, reference, reason),
	})
}

func (s *Service) BookingAssigned(ctx context.Context, to, name string, bookingID int, category string) error {
	return s.enqueue(ctx, Job{
		Type:    TypeBookingAssigned,
		To:      to,
		Name:    name,
		Subject: fmt.Sprintf("New job assigned - booking #%d", bookingID),
		Body: fmt.Sprintf(`Hi %s,

You have been assigned a new %s job (booking #%d).

Log in to accept and see the details.

- HomeServe Team`, name, category, bookingID),
	})
}

func (s *Service) WithdrawalRequested(ctx context.Context, to, name, reference string, amount int64) error {
	return s.enqueue(ctx, Job{
		Type:    TypeWithdrawalRequested,
		To:      to,
		Name:    name,
		Subject: "Withdrawal requested - " + reference,
		Body: fmt.Sprintf(`Hi %s,

Your withdrawal of %d XAF has been recorded and is being processed.

Reference: %s

- HomeServe Team`, name, amount, reference),
	})
}
