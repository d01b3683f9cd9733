package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 4 * time.Minute

// PendingReconciler settles stale PENDING transactions and reports how many changed.
type PendingReconciler interface {
	ReconcilePending(ctx context.Context) (int, error)
}

// Scheduler runs the reconciliation sweep on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	job  PendingReconciler
	log  *zap.Logger
}

func NewScheduler(schedule string, job PendingReconciler, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		job:  job,
		log:  log,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, err
	}
	return s, nil
}

// Run performs one sweep.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	start := time.Now()
	n, err := s.job.ReconcilePending(ctx)
	if err != nil {
		s.log.Error("[reconcile] sweep failed", zap.Int("settled", n), zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("[reconcile] sweep done", zap.Int("settled", n), zap.Duration("took", time.Since(start)))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
