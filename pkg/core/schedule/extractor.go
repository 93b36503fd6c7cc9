package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Period identifies one filing period of one issuer.
type Period struct {
	End   time.Time // period end date
	Label string    // canonical label, e.g. "2024-12-31"
	Form  string    // "10-K" or "10-Q"
}

// ContentFetcher supplies raw filing content per (ticker, period). The core
// performs no network I/O itself; implementations live outside this package
// (see pkg/core/edgar). An empty document means zero records for the period,
// not a failure.
type ContentFetcher interface {
	// ListPeriods enumerates filing periods for a ticker within the horizon,
	// most recent first.
	ListPeriods(ctx context.Context, ticker string, yearsBack int) ([]Period, error)
	// FetchFiling returns the raw filing text/HTML for one period.
	FetchFiling(ctx context.Context, ticker string, period Period) (string, error)
}

// Config configures a HistoricalExtractor. All ambient state is explicit:
// no package-level loggers, no import-time registry mutation.
type Config struct {
	Fetcher ContentFetcher
	// Lexicon optionally extends the built-in lexicons (see LexiconConfig).
	Lexicon *LexiconConfig
	Logger  *zap.Logger
	// MaxParallel bounds concurrent period parses. Defaults to 4.
	MaxParallel int
}

// HistoricalExtractor orchestrates extraction across the filing history of a
// ticker: resolve strategy, tagged pass, HTML fallback, normalization and
// dedup. Safe for concurrent use once constructed.
type HistoricalExtractor struct {
	fetcher     ContentFetcher
	registry    *Registry
	log         *zap.Logger
	maxParallel int
}

// NewHistoricalExtractor builds the facade. Config.Fetcher is required.
func NewHistoricalExtractor(cfg Config) (*HistoricalExtractor, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("schedule: Config.Fetcher is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &HistoricalExtractor{
		fetcher:     cfg.Fetcher,
		registry:    NewRegistry(cfg.Lexicon),
		log:         log,
		maxParallel: maxParallel,
	}, nil
}

// ExtractHistorical extracts all holdings for a ticker across filing periods
// within the horizon, most recent period first. A parse failure on one
// period is logged and that period skipped; the call fails only when the
// period listing itself is unavailable. Within a period records keep
// extraction encounter order.
func (e *HistoricalExtractor) ExtractHistorical(ctx context.Context, ticker string, yearsBack int) ([]*InvestmentRecord, error) {
	periods, err := e.fetcher.ListPeriods(ctx, ticker, yearsBack)
	if err != nil {
		return nil, fmt.Errorf("listing periods for %s: %w", ticker, err)
	}
	if len(periods) == 0 {
		e.log.Info("no filing periods in horizon", zap.String("ticker", ticker), zap.Int("years_back", yearsBack))
		return nil, nil
	}

	strategy := e.registry.Resolve(ticker)
	e.log.Info("extracting ticker",
		zap.String("ticker", ticker),
		zap.String("strategy", strategy.Name()),
		zap.Int("periods", len(periods)))

	// Period parses are independent, so they run in parallel; the results
	// slice is indexed by period so output ordering is a property of
	// assembly, not of completion order. Period failures are contained in
	// extractPeriod, so the group only propagates context cancellation;
	// scheduling stops but in-flight parses run to completion (each parse is
	// pure text scanning and cheap to finish).
	results := make([][]*InvestmentRecord, len(periods))
	g := new(errgroup.Group)
	g.SetLimit(e.maxParallel)
	for i, period := range periods {
		if ctx.Err() != nil {
			break
		}
		i, period := i, period
		g.Go(func() error {
			results[i] = e.extractPeriod(ctx, strategy, ticker, period)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []*InvestmentRecord
	for _, recs := range results {
		all = append(all, recs...)
	}
	return Deduplicate(all), nil
}

// extractPeriod runs one filing period end to end. Any failure (fetch
// error, panic inside a parser on pathological markup) is logged and
// yields zero records for the period; it never aborts the ticker.
func (e *HistoricalExtractor) extractPeriod(ctx context.Context, strategy Strategy, ticker string, period Period) (records []*InvestmentRecord) {
	log := e.log.With(zap.String("ticker", ticker), zap.String("period", period.Label))

	defer func() {
		if r := recover(); r != nil {
			log.Warn("period parse panicked, skipping period", zap.Any("panic", r))
			records = nil
		}
	}()

	content, err := e.fetcher.FetchFiling(ctx, ticker, period)
	if err != nil {
		log.Warn("fetch failed, skipping period", zap.Error(err))
		return nil
	}
	if content == "" {
		log.Info("empty filing content, zero records for period")
		return nil
	}

	records = strategy.ExtractTagged(ticker, period.Label, content)

	if strategy.SupportsHTMLFallback() && needsFallback(records) {
		records = e.mergeFallbackPass(log, strategy, ticker, period, content, records)
	}

	for _, rec := range records {
		finalizeRates(rec)
		if rec.AcquisitionDate != "" && rec.MaturityDate != "" && rec.MaturityDate < rec.AcquisitionDate {
			log.Warn("maturity date precedes acquisition date",
				zap.String("company", rec.CompanyName),
				zap.String("acquisition", rec.AcquisitionDate),
				zap.String("maturity", rec.MaturityDate))
		}
	}

	log.Info("period extracted", zap.Int("records", len(records)))
	return records
}

// needsFallback reports whether the tagged pass left required date fields
// empty, which triggers the HTML fallback. No records at all also
// qualifies: some issuers disclose the schedule only as a rendered table.
func needsFallback(records []*InvestmentRecord) bool {
	if len(records) == 0 {
		return true
	}
	for _, r := range records {
		if r.AcquisitionDate == "" || r.MaturityDate == "" {
			return true
		}
	}
	return false
}

// mergeFallbackPass parses the rendered schedule tables and joins them back
// onto tagged-pass records by fuzzy (company, investment type) key. Fallback
// values fill empty fields only; fallback rows with no tagged counterpart
// become new records: holdings visible only in the HTML table.
func (e *HistoricalExtractor) mergeFallbackPass(log *zap.Logger, strategy Strategy, ticker string, period Period, content string, records []*InvestmentRecord) []*InvestmentRecord {
	rows := strategy.ExtractFallback(ticker, period.Label, content)
	if len(rows) == 0 {
		return records
	}

	byKey := make(map[string]*InvestmentRecord, len(records))
	for _, rec := range records {
		if _, ok := byKey[rec.joinKey()]; !ok {
			byKey[rec.joinKey()] = rec
		}
	}

	merged, added := 0, 0
	for _, row := range rows {
		if rec, ok := byKey[row.Key]; ok {
			MergeFallback(rec, row.Record)
			merged++
			continue
		}
		byKey[row.Key] = row.Record
		records = append(records, row.Record)
		added++
	}
	log.Info("fallback pass merged",
		zap.Int("table_rows", len(rows)),
		zap.Int("merged", merged),
		zap.Int("added", added))
	return records
}
