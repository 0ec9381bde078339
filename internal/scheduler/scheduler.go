// Package scheduler runs the universe scan and premium sweep on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// ScanJob runs a universe volume scan
type ScanJob interface {
	ScanUniverse(ctx context.Context) (models.ScanReport, error)
}

// PremiumJob runs a universe premium sweep
type PremiumJob interface {
	ScanUniverse(ctx context.Context) (models.PremiumBatch, error)
}

// Taipei is the exchange timezone schedules are evaluated in
var Taipei = time.FixedZone("Asia/Taipei", 8*60*60)

// Scheduler manages scheduled monitor jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	baseCtx         context.Context
	cancel          context.CancelFunc
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler evaluating specs in Taipei time
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(Taipei)),
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		baseCtx:         context.Background(),
		cancel:          func() {},
		jobTimeout:      10 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleScan schedules the universe volume scan
func (s *Scheduler) ScheduleScan(cronExpression string, job ScanJob) error {
	return s.add(cronExpression, "scan", func(ctx context.Context) error {
		report, err := job.ScanUniverse(ctx)
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"hits":    report.Hits,
			"skipped": report.SkippedCount,
		}).Info("Scheduled scan completed")
		return nil
	})
}

// SchedulePremium schedules the universe premium sweep
func (s *Scheduler) SchedulePremium(cronExpression string, job PremiumJob) error {
	return s.add(cronExpression, "premium", func(ctx context.Context) error {
		batch, err := job.ScanUniverse(ctx)
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"records": len(batch.Records),
			"skipped": len(batch.Skipped),
		}).Info("Scheduled premium sweep completed")
		return nil
	})
}

func (s *Scheduler) add(cronExpression, name string, run func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := s.jobContext()
		defer cancel()

		s.logger.WithField("job", name).Info("Starting scheduled job")
		if err := run(ctx); err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"job": name, "cron": cronExpression}).Info("Scheduled job")
	return nil
}

// Start starts the scheduler. Running jobs are cancelled when ctx is done
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	s.mu.RLock()
	base := s.baseCtx
	s.mu.RUnlock()
	return context.WithTimeout(base, s.jobTimeout)
}

// Stop cancels running jobs and waits for them up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	stopped := s.cron.Stop()
	s.mu.Unlock()

	cancel()
	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
