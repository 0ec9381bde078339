// Package normalizer turns heterogeneous daily feed rows into canonical
// instrument series.
package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/cb-sentinel/internal/models"
)

// Canonical field names
const (
	FieldDate   = "date"
	FieldClose  = "close"
	FieldVolume = "volume"
)

// FieldAliases maps each canonical field to the column names upstream feeds
// are known to use, in order of preference
type FieldAliases map[string][]string

// DefaultAliases covers FinMind, TPEx and TWSE style columns
var DefaultAliases = FieldAliases{
	FieldDate:   {"date", "Date", "日期", "trade_date"},
	FieldClose:  {"close", "Close", "收盤價", "closing_price", "price"},
	FieldVolume: {"volume", "Volume", "Trading_Volume", "trading_volume", "unit", "成交量", "成交張數"},
}

// maxVolume is the largest volume a PricePoint can hold
var maxVolume = decimal.NewFromInt(math.MaxInt64)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"20060102",
}

// Normalizer resolves columns through an alias table
type Normalizer struct {
	aliases FieldAliases
}

// New creates a normalizer; a nil table selects DefaultAliases
func New(aliases FieldAliases) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Normalizer{aliases: aliases}
}

// Normalize uses the default alias table
func Normalize(instrumentID string, raw []models.RawRecord) (models.InstrumentSeries, error) {
	return New(nil).Normalize(instrumentID, raw)
}

// Normalize builds a series sorted ascending by date. Duplicate dates keep the
// last row seen. Aliases are resolved per row, so a feed may switch column
// names midway. Rows with an unusable date, close or volume are dropped.
func (n *Normalizer) Normalize(instrumentID string, raw []models.RawRecord) (models.InstrumentSeries, error) {
	if len(raw) == 0 {
		return models.InstrumentSeries{}, &models.EmptySeriesError{InstrumentID: instrumentID}
	}

	for _, field := range []string{FieldDate, FieldClose, FieldVolume} {
		if !n.resolvesAnywhere(field, raw) {
			return models.InstrumentSeries{}, &models.MissingFieldError{InstrumentID: instrumentID, Field: field}
		}
	}

	byDate := make(map[time.Time]models.PricePoint, len(raw))
	for _, row := range raw {
		point, ok := n.parseRow(row)
		if !ok {
			continue
		}
		byDate[point.Date] = point
	}

	if len(byDate) == 0 {
		return models.InstrumentSeries{}, &models.EmptySeriesError{InstrumentID: instrumentID}
	}

	points := make([]models.PricePoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return models.InstrumentSeries{InstrumentID: instrumentID, Points: points}, nil
}

func (n *Normalizer) resolvesAnywhere(field string, raw []models.RawRecord) bool {
	for _, row := range raw {
		if _, ok := n.lookup(field, row); ok {
			return true
		}
	}
	return false
}

// lookup returns the value of the first alias present in row. Exact matches
// win over case-insensitive ones.
func (n *Normalizer) lookup(field string, row models.RawRecord) (any, bool) {
	aliases := n.aliases[field]
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			return v, true
		}
	}
	for _, alias := range aliases {
		for key, v := range row {
			if strings.EqualFold(strings.TrimSpace(key), alias) {
				return v, true
			}
		}
	}
	return nil, false
}

func (n *Normalizer) parseRow(row models.RawRecord) (models.PricePoint, bool) {
	rawDate, ok := n.lookup(FieldDate, row)
	if !ok {
		return models.PricePoint{}, false
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return models.PricePoint{}, false
	}

	rawClose, ok := n.lookup(FieldClose, row)
	if !ok {
		return models.PricePoint{}, false
	}
	closePrice, err := parseDecimal(rawClose)
	if err != nil || !closePrice.IsPositive() {
		return models.PricePoint{}, false
	}

	rawVolume, ok := n.lookup(FieldVolume, row)
	if !ok {
		return models.PricePoint{}, false
	}
	volume, err := parseDecimal(rawVolume)
	if err != nil || volume.IsNegative() || volume.GreaterThan(maxVolume) {
		return models.PricePoint{}, false
	}
	return models.PricePoint{
		Date:   date,
		Close:  closePrice,
		Volume: volume.IntPart(),
	}, true
}

func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return truncateDay(t), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return truncateDay(parsed), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", t)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("non-finite value")
		}
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" || s == "-" || s == "--" {
			return decimal.Zero, fmt.Errorf("empty numeric value")
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
	}
}
