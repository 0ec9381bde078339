// Package metrics defines signal and premium metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signals_total",
		Help:      "Volume breakout signals observed by component",
	}, []string{"component"})

	InstrumentsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instruments_skipped_total",
		Help:      "Instruments left out of a batch by component and failure kind",
	}, []string{"component", "kind"})

	PremiumPct = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "conversion_premium_pct",
		Help:      "Latest conversion premium percentage per bond",
	}, []string{"bond_id"})
)

// RecordSignals adds n fired signals for a component.
// component should be one of: "scan", "backtest", "premium"
func RecordSignals(component string, n int) {
	if n <= 0 {
		return
	}
	SignalsTotal.WithLabelValues(component).Add(float64(n))
}

// RecordSkipped records an instrument left out of a batch.
func RecordSkipped(component, kind string) {
	InstrumentsSkippedTotal.WithLabelValues(component, kind).Inc()
}

// UpdatePremium sets the latest premium for a bond.
func UpdatePremium(bondID string, pct float64) {
	PremiumPct.WithLabelValues(bondID).Set(pct)
}
