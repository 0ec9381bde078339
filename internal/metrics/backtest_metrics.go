// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})

	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	})

	BacktestMeanReturn = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_mean_return",
		Help:      "Mean forward return of the latest backtest per instrument",
	}, []string{"instrument_id"})

	BacktestWinRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_win_rate",
		Help:      "Win rate of the latest backtest per instrument",
	}, []string{"instrument_id"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// UpdateBacktestOutcome publishes the latest return statistics for an instrument.
func UpdateBacktestOutcome(instrumentID string, meanReturn, winRate float64) {
	BacktestMeanReturn.WithLabelValues(instrumentID).Set(meanReturn)
	BacktestWinRate.WithLabelValues(instrumentID).Set(winRate)
}
