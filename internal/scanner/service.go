package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/datasource"
	"github.com/yourusername/cb-sentinel/internal/fanout"
	"github.com/yourusername/cb-sentinel/internal/logger"
	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/normalizer"
	"github.com/yourusername/cb-sentinel/internal/repository"
	"github.com/yourusername/cb-sentinel/internal/signal"
)

// Options configures a Scanner
type Options struct {
	Params       signal.Params
	TrailingK    int
	Concurrency  int
	LookbackDays int
}

// Scanner fetches series for a list of instruments and scans them
type Scanner struct {
	source     datasource.SeriesSource
	universe   datasource.UniverseSource
	normalizer *normalizer.Normalizer
	runs       repository.ScanRunRepository
	opts       Options
	log        *logrus.Logger
	events     *logger.SignalLogger
	now        func() time.Time
}

// NewScanner creates a scanner. universe and runs may be nil.
func NewScanner(source datasource.SeriesSource, universe datasource.UniverseSource, runs repository.ScanRunRepository, opts Options, log *logrus.Logger) (*Scanner, error) {
	if source == nil {
		return nil, fmt.Errorf("series source is required")
	}
	if opts.Params.Window == 0 {
		opts.Params.Window = signal.DefaultWindow
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.TrailingK <= 0 {
		opts.TrailingK = DefaultTrailingK
	}
	if opts.LookbackDays <= 0 {
		// enough trading days for a full window plus the trailing points
		opts.LookbackDays = 120
	}
	if log == nil {
		log = logrus.New()
	}
	return &Scanner{
		source:     source,
		universe:   universe,
		normalizer: normalizer.New(nil),
		runs:       runs,
		opts:       opts,
		log:        log,
		events:     logger.NewSignalLogger(log, logger.ComponentScan),
		now:        time.Now,
	}, nil
}

// Scan fetches, normalizes and scans every id with bounded concurrency.
// Per-instrument failures are reported in the Skipped list.
func (s *Scanner) Scan(ctx context.Context, ids []string) (models.ScanReport, error) {
	started := time.Now()
	start := s.now().AddDate(0, 0, -s.opts.LookbackDays)

	outcomes, err := fanout.Map(ctx, ids, s.opts.Concurrency, func(ctx context.Context, id string) (outcome, error) {
		rows, err := s.source.FetchDailySeries(ctx, id, start)
		if err != nil {
			return skipped(id, err), nil
		}
		series, err := s.normalizer.Normalize(id, rows)
		if err != nil {
			return skipped(id, err), nil
		}
		return scanSeries(series, s.opts.Params, s.opts.TrailingK), nil
	})
	if err != nil {
		metrics.RecordScan("failure", 0, time.Since(started).Seconds())
		return models.ScanReport{}, fmt.Errorf("scan aborted: %w", err)
	}

	report := buildReport(outcomes)
	s.observe(report, time.Since(started))
	s.persist(ctx, report)
	return report, nil
}

// ScanUniverse scans every bond listed by the universe source
func (s *Scanner) ScanUniverse(ctx context.Context) (models.ScanReport, error) {
	if s.universe == nil {
		return models.ScanReport{}, fmt.Errorf("no universe source configured")
	}
	instruments, err := s.universe.FetchUniverse(ctx)
	if err != nil {
		return models.ScanReport{}, fmt.Errorf("failed to load CB universe: %w", err)
	}
	ids := make([]string, len(instruments))
	for i, inst := range instruments {
		ids[i] = inst.BondID
	}
	return s.Scan(ctx, ids)
}

func (s *Scanner) observe(report models.ScanReport, elapsed time.Duration) {
	metrics.RecordScan("success", len(report.Hits), elapsed.Seconds())
	for _, r := range report.Results {
		metrics.RecordSignals(logger.ComponentScan, r.SignalCount)
		if r.Hit {
			s.events.WithFields(logrus.Fields{
				"instrument_id":    r.InstrumentID,
				"last_signal_date": r.LastSignalDate.Format("2006-01-02"),
			}).Info("Recent volume breakout")
		}
	}
	for _, skip := range report.Skipped {
		metrics.RecordSkipped(logger.ComponentScan, string(skip.Kind))
		s.events.LogInstrumentSkipped(skip)
	}
	s.events.LogScanCompleted(report, elapsed)
}

// persist stores the run; a storage failure is logged and does not fail the scan
func (s *Scanner) persist(ctx context.Context, report models.ScanReport) {
	if s.runs == nil {
		return
	}
	run := &models.ScanRun{
		ID:             uuid.New(),
		RunAt:          s.now().UTC(),
		TrailingK:      s.opts.TrailingK,
		Hits:           report.Hits,
		SucceededCount: report.SucceededCount,
		SkippedCount:   report.SkippedCount,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.log.WithError(err).Error("Failed to persist scan run")
		return
	}
	s.events.LogRunPersisted(run.ID.String(), "")
}
