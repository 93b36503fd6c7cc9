package edgar

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"bdc_soi/pkg/core/schedule"
)

// CachingFetcher wraps a ContentFetcher with an on-disk filing cache.
// Filings are immutable once published, so entries never expire. Period
// listings are not cached; new filings appear between runs.
type CachingFetcher struct {
	inner schedule.ContentFetcher
	dir   string
	log   *zap.Logger
}

// NewCachingFetcher caches fetched filings under dir. An empty dir defaults
// to .cache/edgar/filings.
func NewCachingFetcher(inner schedule.ContentFetcher, dir string, log *zap.Logger) (*CachingFetcher, error) {
	if dir == "" {
		dir = filepath.Join(".cache", "edgar", "filings")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachingFetcher{inner: inner, dir: dir, log: log}, nil
}

// ListPeriods delegates to the wrapped fetcher.
func (c *CachingFetcher) ListPeriods(ctx context.Context, ticker string, yearsBack int) ([]schedule.Period, error) {
	return c.inner.ListPeriods(ctx, ticker, yearsBack)
}

// FetchFiling returns the cached filing when present, fetching and caching
// it otherwise. Empty content (no filing for the period) is not cached.
func (c *CachingFetcher) FetchFiling(ctx context.Context, ticker string, period schedule.Period) (string, error) {
	path := c.entryPath(ticker, period)
	if data, err := os.ReadFile(path); err == nil {
		c.log.Debug("filing cache hit", zap.String("ticker", ticker), zap.String("period", period.Label))
		return string(data), nil
	}

	content, err := c.inner.FetchFiling(ctx, ticker, period)
	if err != nil {
		return "", err
	}
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			c.log.Warn("writing filing cache entry", zap.String("path", path), zap.Error(err))
		}
	}
	return content, nil
}

func (c *CachingFetcher) entryPath(ticker string, period schedule.Period) string {
	name := fmt.Sprintf("%s_%s_%s.html",
		strings.ToUpper(strings.TrimSpace(ticker)),
		strings.ReplaceAll(period.Label, "-", ""),
		period.Form)
	return filepath.Join(c.dir, name)
}
