// Command extract pulls Schedule of Investments data for one or more BDC
// tickers from SEC EDGAR and writes one CSV per ticker.
//
// Usage:
//
//	extract -tickers ARCC,FSK -years 5 -out ./output
//
// SEC_USER_AGENT must be set (EDGAR rejects anonymous requests). DATABASE_URL
// is optional; when set, each run is also persisted to Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bdc_soi/pkg/core/edgar"
	"bdc_soi/pkg/core/report"
	"bdc_soi/pkg/core/schedule"
	"bdc_soi/pkg/core/store"
)

func main() {
	godotenv.Load()

	tickers := flag.String("tickers", "", "comma-separated BDC tickers (e.g. ARCC,FSK,OBDC)")
	years := flag.Int("years", 5, "years of filing history to extract")
	outDir := flag.String("out", "output", "output directory for per-ticker CSVs")
	cacheDir := flag.String("cache", "", "filing cache directory (default .cache/edgar/filings)")
	lexiconPath := flag.String("lexicon", "", "optional YAML lexicon overrides")
	parallel := flag.Int("parallel", 4, "max periods extracted concurrently per ticker")
	flag.Parse()

	if *tickers == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -tickers ARCC,FSK [-years N] [-out DIR]")
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*tickers, *years, *outDir, *cacheDir, *lexiconPath, *parallel, log); err != nil {
		log.Fatal("extraction failed", zap.Error(err))
	}
}

func run(tickers string, years int, outDir, cacheDir, lexiconPath string, parallel int, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userAgent := os.Getenv("SEC_USER_AGENT")
	client, err := edgar.NewClient(userAgent, edgar.WithLogger(log))
	if err != nil {
		return err
	}
	fetcher, err := edgar.NewCachingFetcher(client, cacheDir, log)
	if err != nil {
		return err
	}

	lexicon, err := schedule.LoadLexiconConfig(lexiconPath)
	if err != nil {
		return fmt.Errorf("loading lexicon config: %w", err)
	}

	db, err := store.New(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer db.Close()

	extractor, err := schedule.NewHistoricalExtractor(schedule.Config{
		Fetcher:     fetcher,
		Lexicon:     lexicon,
		Logger:      log,
		MaxParallel: parallel,
	})
	if err != nil {
		return err
	}

	for _, ticker := range strings.Split(tickers, ",") {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		startedAt := time.Now()
		records, err := extractor.ExtractHistorical(ctx, ticker, years)
		if err != nil {
			log.Error("extracting ticker", zap.String("ticker", ticker), zap.Error(err))
			continue
		}

		outPath := filepath.Join(outDir, fmt.Sprintf("%s_schedule_of_investments.csv", ticker))
		if err := report.WriteCSVFile(outPath, records); err != nil {
			return err
		}
		log.Info("wrote extraction CSV",
			zap.String("ticker", ticker),
			zap.Int("records", len(records)),
			zap.String("path", outPath))

		if db.Enabled() {
			runID, err := db.SaveRun(ctx, ticker, years, startedAt, records)
			if err != nil {
				log.Error("persisting run", zap.String("ticker", ticker), zap.Error(err))
				continue
			}
			log.Info("persisted run", zap.String("ticker", ticker), zap.String("run_id", runID.String()))
		}
	}
	return ctx.Err()
}
