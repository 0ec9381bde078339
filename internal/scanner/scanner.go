// Package scanner runs the volume breakout detector across a universe of bonds.
package scanner

import (
	"sort"

	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/signal"
)

// DefaultTrailingK is how many of an instrument's latest points are checked for a signal
const DefaultTrailingK = 3

// ScanUniverse applies the detector to every series and reports instruments
// with a signal among their own last trailingK points. Empty series are skipped
// as no data; the scan always continues. Invalid parameters fail the whole scan.
func ScanUniverse(series []models.InstrumentSeries, params signal.Params, trailingK int) (models.ScanReport, error) {
	if trailingK <= 0 {
		trailingK = DefaultTrailingK
	}
	if params.Window == 0 {
		params.Window = signal.DefaultWindow
	}
	if err := params.Validate(); err != nil {
		return models.ScanReport{}, err
	}

	outcomes := make([]outcome, 0, len(series))
	for _, s := range series {
		outcomes = append(outcomes, scanSeries(s, params, trailingK))
	}
	return buildReport(outcomes), nil
}

// outcome is the per-instrument result; exactly one of result and skip is set
type outcome struct {
	result *models.InstrumentScan
	skip   *models.SkippedInstrument
}

func skipped(id string, err error) outcome {
	return outcome{skip: &models.SkippedInstrument{
		InstrumentID: id,
		Kind:         models.Classify(err),
		Reason:       err.Error(),
	}}
}

func scanSeries(s models.InstrumentSeries, params signal.Params, trailingK int) outcome {
	if s.IsEmpty() {
		return skipped(s.InstrumentID, &models.EmptySeriesError{InstrumentID: s.InstrumentID})
	}
	flagged, err := signal.DetectSignals(s, params)
	if err != nil {
		return skipped(s.InstrumentID, err)
	}

	last, _ := s.Last()
	result := &models.InstrumentScan{
		InstrumentID: s.InstrumentID,
		LastDate:     last.Date,
		Points:       s.Len(),
		SignalCount:  flagged.SignalCount(),
	}
	if p, hit := signal.RecentHit(flagged, trailingK); hit {
		date := p.Date
		result.Hit = true
		result.LastSignalDate = &date
	}
	return outcome{result: result}
}

// buildReport gathers outcomes in any order into a report sorted by instrument id
func buildReport(outcomes []outcome) models.ScanReport {
	report := models.ScanReport{
		Hits:    make([]string, 0),
		Results: make([]models.InstrumentScan, 0, len(outcomes)),
		Skipped: make([]models.SkippedInstrument, 0),
	}
	for _, o := range outcomes {
		if o.skip != nil {
			report.Skipped = append(report.Skipped, *o.skip)
			continue
		}
		report.Results = append(report.Results, *o.result)
		if o.result.Hit {
			report.Hits = append(report.Hits, o.result.InstrumentID)
		}
	}

	sort.Strings(report.Hits)
	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].InstrumentID < report.Results[j].InstrumentID
	})
	sort.SliceStable(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].InstrumentID < report.Skipped[j].InstrumentID
	})
	report.SucceededCount = len(report.Results)
	report.SkippedCount = len(report.Skipped)
	return report
}
