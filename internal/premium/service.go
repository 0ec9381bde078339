package premium

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/cb-sentinel/internal/datasource"
	"github.com/yourusername/cb-sentinel/internal/fanout"
	"github.com/yourusername/cb-sentinel/internal/logger"
	"github.com/yourusername/cb-sentinel/internal/metrics"
	"github.com/yourusername/cb-sentinel/internal/models"
)

// Service computes premiums for live quotes
type Service struct {
	universe    datasource.UniverseSource
	bonds       datasource.QuoteSource
	equities    datasource.QuoteSource
	concurrency int
	log         *logrus.Logger
	events      *logger.SignalLogger
}

// NewService creates a premium service. bonds quotes CB tickers and equities
// quotes underlying stock tickers.
func NewService(universe datasource.UniverseSource, bonds, equities datasource.QuoteSource, concurrency int, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		universe:    universe,
		bonds:       bonds,
		equities:    equities,
		concurrency: concurrency,
		log:         log,
		events:      logger.NewSignalLogger(log, logger.ComponentPremium),
	}
}

// outcome is the per-instrument result of the quote fan-out
type outcome struct {
	input PremiumInput
	skip  *models.SkippedInstrument
}

// ScanUniverse loads the instrument registry and scans it
func (s *Service) ScanUniverse(ctx context.Context) (models.PremiumBatch, error) {
	if s.universe == nil {
		return models.PremiumBatch{}, fmt.Errorf("no universe source configured")
	}
	instruments, err := s.universe.FetchUniverse(ctx)
	if err != nil {
		return models.PremiumBatch{}, fmt.Errorf("failed to load CB universe: %w", err)
	}
	return s.Scan(ctx, instruments)
}

// Scan fetches CB and equity quotes for every instrument and computes premiums.
// A fetch error skips only that instrument.
func (s *Service) Scan(ctx context.Context, instruments []models.CBInstrument) (models.PremiumBatch, error) {
	started := time.Now()

	outcomes, err := fanout.Map(ctx, instruments, s.concurrency, s.quote)
	if err != nil {
		return models.PremiumBatch{}, fmt.Errorf("premium scan aborted: %w", err)
	}

	inputs := make([]PremiumInput, 0, len(outcomes))
	fetchSkips := make([]models.SkippedInstrument, 0)
	for _, o := range outcomes {
		if o.skip != nil {
			fetchSkips = append(fetchSkips, *o.skip)
			continue
		}
		inputs = append(inputs, o.input)
	}

	batch := ComputeBatch(inputs)
	batch.Skipped = append(batch.Skipped, fetchSkips...)
	sortBatch(&batch)

	for _, r := range batch.Records {
		pct, _ := r.PremiumPct.Float64()
		metrics.UpdatePremium(r.BondID, pct)
	}
	for _, skip := range batch.Skipped {
		metrics.RecordSkipped(logger.ComponentPremium, string(skip.Kind))
		s.events.LogInstrumentSkipped(skip)
	}
	s.events.LogPremiumBatch(batch, time.Since(started))

	return batch, nil
}

// quote fetches both prices for one instrument. Instruments with an invalid
// conversion price are passed through without fetching.
func (s *Service) quote(ctx context.Context, inst models.CBInstrument) (outcome, error) {
	in := PremiumInput{Instrument: inst}
	if !inst.ConversionPrice.IsPositive() {
		return outcome{input: in}, nil
	}

	cb, err := s.bonds.FetchQuote(ctx, inst.BondID)
	if err != nil {
		return outcome{skip: fetchSkip(inst.BondID, err)}, nil
	}
	in.CBPrice = cb
	if cb == nil {
		return outcome{input: in}, nil
	}

	underlying := inst.UnderlyingID
	if underlying == "" {
		underlying = datasource.UnderlyingFromBondID(inst.BondID)
		in.Instrument.UnderlyingID = underlying
	}
	eq, err := s.equities.FetchQuote(ctx, underlying)
	if err != nil {
		return outcome{skip: fetchSkip(inst.BondID, err)}, nil
	}
	in.EquityPrice = eq
	return outcome{input: in}, nil
}

func fetchSkip(bondID string, err error) *models.SkippedInstrument {
	return &models.SkippedInstrument{
		InstrumentID: bondID,
		Kind:         models.Classify(err),
		Reason:       err.Error(),
	}
}
