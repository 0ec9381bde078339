// Package logger provides signal and batch event logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// Component names attached to every event
const (
	ComponentScan     = "scan"
	ComponentBacktest = "backtest"
	ComponentPremium  = "premium"
)

const dateLayout = "2006-01-02"

// SignalLogger provides dedicated logging for detector, scan and premium events.
type SignalLogger struct {
	*logrus.Entry
}

// NewSignalLogger creates a signal logger tagged with component.
func NewSignalLogger(baseLogger *logrus.Logger, component string) *SignalLogger {
	if baseLogger == nil {
		baseLogger = logrus.StandardLogger()
	}
	return &SignalLogger{
		Entry: baseLogger.WithField("component", component),
	}
}

// LogSignalFired logs one volume breakout.
func (sl *SignalLogger) LogSignalFired(instrumentID string, s models.Signal) {
	sl.WithFields(logrus.Fields{
		"instrument_id": instrumentID,
		"signal_date":   s.Date.Format(dateLayout),
		"close":         s.Close.String(),
		"volume":        s.Volume,
		"rolling_mean":  s.RollingVolumeMean.String(),
		"multiplier":    s.MultiplierUsed.String(),
	}).Info("Volume breakout signal")
}

// LogInstrumentSkipped logs an instrument left out of a batch.
func (sl *SignalLogger) LogInstrumentSkipped(skip models.SkippedInstrument) {
	sl.WithFields(logrus.Fields{
		"instrument_id": skip.InstrumentID,
		"kind":          string(skip.Kind),
		"reason":        skip.Reason,
	}).Warn("Instrument skipped")
}

// LogScanCompleted logs the summary of a universe scan.
func (sl *SignalLogger) LogScanCompleted(report models.ScanReport, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"hits":        len(report.Hits),
		"succeeded":   report.SucceededCount,
		"skipped":     report.SkippedCount,
		"duration_ms": duration.Milliseconds(),
	}).Info("Universe scan completed")
}

// LogBacktestSummary logs the aggregate outcome of a backtest.
func (sl *SignalLogger) LogBacktestSummary(result models.BacktestResult, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"instrument_id":  result.InstrumentID,
		"holding_days":   result.HoldingDays,
		"signal_count":   result.SignalCount,
		"resolved_count": result.ResolvedCount,
		"mean_return":    result.MeanReturn.String(),
		"win_rate":       result.WinRate.String(),
		"duration_ms":    duration.Milliseconds(),
	}).Info("Backtest completed")
}

// LogPremiumBatch logs the summary of a premium sweep.
func (sl *SignalLogger) LogPremiumBatch(batch models.PremiumBatch, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"computed":    len(batch.Records),
		"skipped":     len(batch.Skipped),
		"duration_ms": duration.Milliseconds(),
	}).Info("Premium sweep completed")
}

// LogRunPersisted logs a stored run record.
func (sl *SignalLogger) LogRunPersisted(runID, instrumentID string) {
	sl.WithFields(logrus.Fields{
		"run_id":        runID,
		"instrument_id": instrumentID,
	}).Debug("Run persisted")
}
