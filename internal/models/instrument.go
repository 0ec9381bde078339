package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CBInstrument is static reference data for one convertible bond
type CBInstrument struct {
	BondID          string          `db:"bond_id" json:"bond_id" validate:"required"`
	BondName        string          `db:"bond_name" json:"bond_name"`
	UnderlyingID    string          `db:"underlying_id" json:"underlying_id" validate:"required"`
	ConversionPrice decimal.Decimal `db:"conversion_price" json:"conversion_price"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PremiumRecord is the conversion premium of one CB at quote time
type PremiumRecord struct {
	BondID          string          `json:"bond_id"`
	UnderlyingID    string          `json:"underlying_id"`
	CBPrice         decimal.Decimal `json:"cb_market_price"`
	EquityPrice     decimal.Decimal `json:"equity_market_price"`
	ConversionPrice decimal.Decimal `json:"conversion_price"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
	PremiumPct      decimal.Decimal `json:"premium_pct"`
}

// PremiumBatch is the result of computing premiums across a universe
type PremiumBatch struct {
	Records []PremiumRecord     `json:"records"`
	Skipped []SkippedInstrument `json:"skipped"`
}
