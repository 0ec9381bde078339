package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/datasource"
	"github.com/yourusername/cb-sentinel/internal/logger"
	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/normalizer"
	"github.com/yourusername/cb-sentinel/internal/repository"
	"github.com/yourusername/cb-sentinel/internal/signal"
)

// Report is the outcome of one backtest run
type Report struct {
	RunID     uuid.UUID
	Config    BacktestConfig
	Flagged   models.SignalSeries
	Signals   []models.Signal
	Result    models.BacktestResult
	StartDate time.Time
	EndDate   time.Time
}

// Engine fetches a series, detects breakouts and evaluates forward returns
type Engine struct {
	source     datasource.SeriesSource
	runs       repository.BacktestRunRepository
	normalizer *normalizer.Normalizer
	logger     *logrus.Logger
	events     *logger.SignalLogger
	now        func() time.Time
}

// NewEngine creates a new backtesting engine. runs may be nil, in which case
// results are not persisted.
func NewEngine(source datasource.SeriesSource, runs repository.BacktestRunRepository, log *logrus.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("series source is required")
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		source:     source,
		runs:       runs,
		normalizer: normalizer.New(nil),
		logger:     log,
		events:     logger.NewSignalLogger(log, logger.ComponentBacktest),
		now:        time.Now,
	}, nil
}

// Run executes the pipeline for one bond
func (e *Engine) Run(ctx context.Context, cfg BacktestConfig) (*Report, error) {
	started := time.Now()
	report, err := e.run(ctx, cfg)
	if err != nil {
		metrics.RecordBacktestRun("failure", time.Since(started).Seconds())
		return nil, err
	}

	elapsed := time.Since(started)
	metrics.RecordBacktestRun("success", elapsed.Seconds())
	metrics.RecordSignals(logger.ComponentBacktest, report.Result.SignalCount)
	metrics.UpdateBacktestOutcome(cfg.BondID, report.Result.MeanReturn.InexactFloat64(), report.Result.WinRate.InexactFloat64())
	e.events.LogBacktestSummary(report.Result, elapsed)

	e.persist(ctx, report)
	return report, nil
}

func (e *Engine) run(ctx context.Context, cfg BacktestConfig) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"bond_id":      cfg.BondID,
		"start":        cfg.StartDate.Format("2006-01-02"),
		"holding_days": cfg.HoldingDays,
		"multiplier":   cfg.Params.Multiplier.String(),
	}).Info("Starting backtest run")

	rows, err := e.source.FetchDailySeries(ctx, cfg.BondID, cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series for %s: %w", cfg.BondID, err)
	}
	series, err := e.normalizer.Normalize(cfg.BondID, rows)
	if err != nil {
		return nil, err
	}
	flagged, err := signal.DetectSignals(series, cfg.Params)
	if err != nil {
		return nil, err
	}
	result, err := EvaluateBacktest(flagged, cfg.HoldingDays)
	if err != nil {
		return nil, err
	}

	signals := flagged.Signals()
	for _, s := range signals {
		e.events.LogSignalFired(cfg.BondID, s)
	}

	return &Report{
		Config:    cfg,
		Flagged:   flagged,
		Signals:   signals,
		Result:    result,
		StartDate: series.Points[0].Date,
		EndDate:   series.Points[len(series.Points)-1].Date,
	}, nil
}

// persist stores the run; a storage failure is logged and does not fail the backtest
func (e *Engine) persist(ctx context.Context, report *Report) {
	if e.runs == nil {
		return
	}
	records, err := json.Marshal(report.Result.Records)
	if err != nil {
		e.logger.WithError(err).Error("Failed to encode backtest records")
		return
	}

	run := &models.BacktestRun{
		ID:            uuid.New(),
		InstrumentID:  report.Config.BondID,
		RunDate:       e.now().UTC(),
		StartDate:     report.StartDate,
		EndDate:       report.EndDate,
		Window:        report.Flagged.Window,
		Multiplier:    report.Flagged.Multiplier,
		HoldingDays:   report.Result.HoldingDays,
		SignalCount:   report.Result.SignalCount,
		ResolvedCount: report.Result.ResolvedCount,
		MeanReturn:    report.Result.MeanReturn,
		WinRate:       report.Result.WinRate,
		Records:       records,
	}
	if err := e.runs.Create(ctx, run); err != nil {
		e.logger.WithError(err).Error("Failed to persist backtest run")
		return
	}
	report.RunID = run.ID
	e.events.LogRunPersisted(run.ID.String(), run.InstrumentID)
}
