package payment

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"homeserve/internal/logger"
)

// LedgerPruner removes old completed ledger rows. The wallet service
// implements it.
type LedgerPruner interface {
	PruneOldTransactions(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Sweeper runs the periodic jobs around the payment lifecycle: closing
// expired collection attempts every minute and pruning terminal records
// daily.
type Sweeper struct {
	scheduler gocron.Scheduler
	payments  Service
	ledger    LedgerPruner
}

func NewSweeper(payments Service, ledger LedgerPruner) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{scheduler: scheduler, payments: payments, ledger: ledger}, nil
}

func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(s.prune),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	logger.Info("payment sweeper started")
	return nil
}

func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.payments.SweepExpired(ctx)
	if err != nil {
		logger.Error("sweeping expired payments", "error", err)
		return
	}
	if n > 0 {
		logger.Info("expired payments closed", "count", n)
	}
}

func (s *Sweeper) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	payments, err := s.payments.PruneOld(ctx)
	if err != nil {
		logger.Error("pruning payments", "error", err)
	}
	transactions, err := s.ledger.PruneOldTransactions(ctx, RetentionWindow)
	if err != nil {
		logger.Error("pruning transactions", "error", err)
	}
	logger.Info("retention cleanup done", "payments", payments, "transactions", transactions)
}
