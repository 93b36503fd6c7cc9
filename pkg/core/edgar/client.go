// Package edgar fetches BDC filings from SEC EDGAR: ticker-to-CIK
// resolution, filing-period enumeration from the submissions API, and
// primary-document retrieval. It implements schedule.ContentFetcher.
//
// EDGAR is a rate-limited public service that rejects anonymous requests, so
// the client requires an identifying User-Agent, throttles itself, and
// retries transient failures with exponential backoff.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bdc_soi/pkg/core/schedule"
)

const (
	defaultSubmissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	defaultFilingURL         = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
	defaultCompanyTickersURL = "https://www.sec.gov/files/company_tickers.json"

	defaultTimeout = 60 * time.Second
	maxAttempts    = 3
)

// Client is a rate-limited SEC EDGAR client.
type Client struct {
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger

	// Endpoint templates, overridable in tests.
	submissionsURL    string
	filingURL         string
	companyTickersURL string

	tickerCache map[string]string // ticker -> zero-padded CIK
	tickerMutex sync.RWMutex

	filingCache map[string][]filing // ticker -> filings, most recent first
	filingMutex sync.RWMutex
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger attaches a logger. Default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit overrides the default 8 req/s limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)) }
}

// NewClient creates an EDGAR client. userAgent must be a non-empty
// identifying string ("Name contact@example.com"); EDGAR rejects anonymous
// requests.
func NewClient(userAgent string, options ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, fmt.Errorf("edgar: user agent is required, SEC rejects anonymous requests")
	}
	c := &Client{
		userAgent:         userAgent,
		httpClient:        &http.Client{Timeout: defaultTimeout},
		limiter:           rate.NewLimiter(rate.Limit(8), 8),
		log:               zap.NewNop(),
		submissionsURL:    defaultSubmissionsURL,
		filingURL:         defaultFilingURL,
		companyTickersURL: defaultCompanyTickersURL,
		tickerCache:       make(map[string]string),
		filingCache:       make(map[string][]filing),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// LookupCIK resolves a ticker symbol to a zero-padded CIK using the SEC
// company tickers file. The full map is fetched once and cached.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))

	c.tickerMutex.RLock()
	cik, ok := c.tickerCache[normalized]
	c.tickerMutex.RUnlock()
	if ok {
		return cik, nil
	}

	c.tickerMutex.Lock()
	defer c.tickerMutex.Unlock()
	if cik, ok := c.tickerCache[normalized]; ok {
		return cik, nil
	}
	if err := c.loadTickerCache(ctx); err != nil {
		return "", err
	}
	if cik, ok := c.tickerCache[normalized]; ok {
		return cik, nil
	}
	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

func (c *Client) loadTickerCache(ctx context.Context) error {
	body, err := c.fetchURL(ctx, c.companyTickersURL)
	if err != nil {
		return fmt.Errorf("fetching company tickers: %w", err)
	}

	// Format: {"0": {"cik_str": 1287750, "ticker": "ARCC", "title": "..."}, ...}
	var entries map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("parsing company tickers: %w", err)
	}
	for _, entry := range entries {
		c.tickerCache[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	c.log.Info("loaded SEC ticker map", zap.Int("tickers", len(c.tickerCache)))
	return nil
}

// submissionsResponse is the slice of the SEC submissions API this client
// consumes.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// filing pairs a schedule.Period with its document location.
type filing struct {
	period     schedule.Period
	accession  string
	primaryDoc string
}

// ListPeriods implements schedule.ContentFetcher: 10-K and 10-Q filings
// (amendments included) with report dates inside the horizon, most recent
// first. One filing per period end date; an amendment supersedes the
// original because the API lists it later and we keep the last one seen.
func (c *Client) ListPeriods(ctx context.Context, ticker string, yearsBack int) ([]schedule.Period, error) {
	filings, err := c.listFilings(ctx, ticker, yearsBack)
	if err != nil {
		return nil, err
	}
	periods := make([]schedule.Period, len(filings))
	for i, f := range filings {
		periods[i] = f.period
	}
	return periods, nil
}

func (c *Client) listFilings(ctx context.Context, ticker string, yearsBack int) ([]filing, error) {
	all, err := c.allFilings(ctx, ticker)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(-yearsBack, 0, 0)
	filings := make([]filing, 0, len(all))
	for _, f := range all {
		if !f.period.End.Before(cutoff) {
			filings = append(filings, f)
		}
	}
	return filings, nil
}

// allFilings returns every 10-K/10-Q filing for the ticker, most recent
// first, fetching the submissions index at most once per ticker.
func (c *Client) allFilings(ctx context.Context, ticker string) ([]filing, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	c.filingMutex.RLock()
	cached, ok := c.filingCache[key]
	c.filingMutex.RUnlock()
	if ok {
		return cached, nil
	}

	cik, err := c.LookupCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	body, err := c.fetchURL(ctx, fmt.Sprintf(c.submissionsURL, cik))
	if err != nil {
		return nil, fmt.Errorf("fetching submissions for %s: %w", ticker, err)
	}
	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing submissions for %s: %w", ticker, err)
	}

	recent := resp.Filings.Recent
	byPeriod := make(map[string]filing)
	for i, form := range recent.Form {
		if !isScheduleForm(form) {
			continue
		}
		if i >= len(recent.ReportDate) || i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			continue
		}
		if recent.ReportDate[i] == "" {
			continue
		}
		end, err := time.Parse("2006-01-02", recent.ReportDate[i])
		if err != nil {
			continue
		}
		byPeriod[recent.ReportDate[i]] = filing{
			period: schedule.Period{
				End:   end,
				Label: recent.ReportDate[i],
				Form:  strings.TrimSuffix(form, "/A"),
			},
			accession:  recent.AccessionNumber[i],
			primaryDoc: recent.PrimaryDocument[i],
		}
	}

	filings := make([]filing, 0, len(byPeriod))
	for _, f := range byPeriod {
		filings = append(filings, f)
	}
	sort.Slice(filings, func(i, j int) bool {
		return filings[i].period.End.After(filings[j].period.End)
	})

	c.filingMutex.Lock()
	c.filingCache[key] = filings
	c.filingMutex.Unlock()
	return filings, nil
}

func isScheduleForm(form string) bool {
	switch strings.TrimSuffix(form, "/A") {
	case "10-K", "10-Q":
		return true
	}
	return false
}

// FetchFiling implements schedule.ContentFetcher: the primary document of
// the filing covering the period. A period with no matching filing yields
// empty content, which the core treats as zero records.
func (c *Client) FetchFiling(ctx context.Context, ticker string, period schedule.Period) (string, error) {
	filings, err := c.allFilings(ctx, ticker)
	if err != nil {
		return "", err
	}
	for _, f := range filings {
		if f.period.Label != period.Label {
			continue
		}
		cik, err := c.LookupCIK(ctx, ticker)
		if err != nil {
			return "", err
		}
		accession := strings.ReplaceAll(f.accession, "-", "")
		url := fmt.Sprintf(c.filingURL, strings.TrimLeft(cik, "0"), accession, f.primaryDoc)
		body, err := c.fetchURL(ctx, url)
		if err != nil {
			return "", fmt.Errorf("fetching filing %s: %w", f.accession, err)
		}
		return string(body), nil
	}
	return "", nil
}

// fetchURL performs one rate-limited GET with the identifying User-Agent and
// retry-with-backoff on transient failures. Context cancellation is never
// retried.
func (c *Client) fetchURL(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * time.Second
			c.log.Debug("retrying fetch", zap.String("url", url), zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries failed: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
