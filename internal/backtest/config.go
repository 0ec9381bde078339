package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/cb-sentinel/internal/config"
	"github.com/yourusername/cb-sentinel/internal/signal"
)

const (
	// DefaultBondID is the CB evaluated when none is given
	DefaultBondID = "15821"
	// DefaultLookbackDays is the calendar span fetched when no start date is set
	DefaultLookbackDays = 730
)

// BacktestConfig holds the parameters of one backtest run
type BacktestConfig struct {
	BondID      string
	StartDate   time.Time
	HoldingDays int
	Params      signal.Params
	OutputPath  string
}

// FromConfig converts app config to backtest config. An empty start date
// resolves to now minus the configured lookback.
func FromConfig(cfg *config.BacktestConfig, detector *config.DetectorConfig, now time.Time) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}

	bt := BacktestConfig{
		BondID:      cfg.BondID,
		HoldingDays: cfg.HoldingDays,
		Params:      signal.DefaultParams(),
		OutputPath:  cfg.OutputPath,
	}
	if bt.BondID == "" {
		bt.BondID = DefaultBondID
	}
	if bt.HoldingDays == 0 {
		bt.HoldingDays = DefaultHoldingDays
	}
	if detector != nil {
		if detector.Window > 0 {
			bt.Params.Window = detector.Window
		}
		if detector.Multiplier > 0 {
			bt.Params.Multiplier = detector.MultiplierDecimal()
		}
	}

	if cfg.StartDate != "" {
		start, err := time.Parse("2006-01-02", cfg.StartDate)
		if err != nil {
			return BacktestConfig{}, fmt.Errorf("invalid start date: %w", err)
		}
		bt.StartDate = start
	} else {
		lookback := cfg.LookbackDays
		if lookback <= 0 {
			lookback = DefaultLookbackDays
		}
		bt.StartDate = now.UTC().AddDate(0, 0, -lookback).Truncate(24 * time.Hour)
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.BondID == "" {
		return fmt.Errorf("bond id is required")
	}
	if err := ValidateHoldingDays(b.HoldingDays); err != nil {
		return err
	}
	return b.Params.Validate()
}
