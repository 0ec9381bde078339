package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BacktestRecord is the outcome of buying at one signal. ExitPrice and Return
// are nil while fewer than HoldingDays observations follow the signal.
type BacktestRecord struct {
	SignalDate  time.Time        `json:"signal_date"`
	EntryPrice  decimal.Decimal  `json:"entry_price"`
	ExitDate    *time.Time       `json:"exit_date,omitempty"`
	ExitPrice   *decimal.Decimal `json:"exit_price,omitempty"`
	HoldingDays int              `json:"holding_days"`
	Return      *decimal.Decimal `json:"return,omitempty"`
}

// IsResolved reports whether the exit price is known
func (r BacktestRecord) IsResolved() bool {
	return r.ExitPrice != nil && r.Return != nil
}

// BacktestResult aggregates forward returns across all signals of one series
type BacktestResult struct {
	InstrumentID  string           `json:"instrument_id"`
	HoldingDays   int              `json:"holding_days"`
	SignalCount   int              `json:"signal_count"`
	ResolvedCount int              `json:"resolved_count"`
	MeanReturn    decimal.Decimal  `json:"mean_return"`
	WinRate       decimal.Decimal  `json:"win_rate"`
	WinningCount  int              `json:"winning_count"`
	LosingCount   int              `json:"losing_count"`
	BestReturn    decimal.Decimal  `json:"best_return"`
	WorstReturn   decimal.Decimal  `json:"worst_return"`
	Records       []BacktestRecord `json:"records"`
}

// UnresolvedCount is the number of signals still waiting for an exit price
func (r BacktestResult) UnresolvedCount() int {
	return r.SignalCount - r.ResolvedCount
}

// HasOutcomes reports whether any signal has a known return
func (r BacktestResult) HasOutcomes() bool {
	return r.ResolvedCount > 0
}

// BacktestRun is a persisted backtest invocation
type BacktestRun struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	InstrumentID  string          `db:"instrument_id" json:"instrument_id"`
	RunDate       time.Time       `db:"run_date" json:"run_date"`
	StartDate     time.Time       `db:"start_date" json:"start_date"`
	EndDate       time.Time       `db:"end_date" json:"end_date"`
	Window        int             `db:"window_size" json:"window"`
	Multiplier    decimal.Decimal `db:"multiplier" json:"multiplier"`
	HoldingDays   int             `db:"holding_days" json:"holding_days"`
	SignalCount   int             `db:"signal_count" json:"signal_count"`
	ResolvedCount int             `db:"resolved_count" json:"resolved_count"`
	MeanReturn    decimal.Decimal `db:"mean_return" json:"mean_return"`
	WinRate       decimal.Decimal `db:"win_rate" json:"win_rate"`
	Records       json.RawMessage `db:"records" json:"records"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
