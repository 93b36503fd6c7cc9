package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned filing content per period label.
type fakeFetcher struct {
	periods  []Period
	listErr  error
	content  map[string]string
	fetchErr map[string]error
}

func (f *fakeFetcher) ListPeriods(ctx context.Context, ticker string, yearsBack int) ([]Period, error) {
	return f.periods, f.listErr
}

func (f *fakeFetcher) FetchFiling(ctx context.Context, ticker string, period Period) (string, error) {
	if err := f.fetchErr[period.Label]; err != nil {
		return "", err
	}
	return f.content[period.Label], nil
}

func period(label string) Period {
	end, _ := time.Parse("2006-01-02", label)
	return Period{End: end, Label: label, Form: "10-Q"}
}

// taggedContent renders a one-holding inline-XBRL fragment.
func taggedContent(company, maturity string, principal int) string {
	return fmt.Sprintf(`
<xbrli:context id="c1">
  <xbrldi:explicitMember dimension="us-gaap:InvestmentIdentifierAxis">h1</xbrldi:explicitMember>
</xbrli:context>
<ix:nonNumeric name="us-gaap:InvestmentIssuerNameTextBlock" contextRef="c1">%s</ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentTypeTextBlock" contextRef="c1">First lien senior secured loan</ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentMaturityDate" contextRef="c1">%s</ix:nonNumeric>
<ix:nonFraction name="us-gaap:InvestmentOwnedBalancePrincipalAmount" contextRef="c1">%d</ix:nonFraction>`,
		company, maturity, principal)
}

func newTestHistoricalExtractor(t *testing.T, fetcher ContentFetcher) *HistoricalExtractor {
	t.Helper()
	e, err := NewHistoricalExtractor(Config{Fetcher: fetcher})
	require.NoError(t, err)
	return e
}

func TestNewHistoricalExtractorRequiresFetcher(t *testing.T) {
	_, err := NewHistoricalExtractor(Config{})
	require.Error(t, err)
}

func TestExtractHistoricalOrdering(t *testing.T) {
	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31"), period("2024-09-30"), period("2024-06-30")},
		content: map[string]string{
			"2024-12-31": taggedContent("Alpha LLC", "6/15/2027", 100),
			"2024-09-30": taggedContent("Bravo LLC", "6/15/2028", 200),
			"2024-06-30": taggedContent("Charlie LLC", "6/15/2029", 300),
		},
	}

	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Output follows period order regardless of which parse finished first.
	assert.Equal(t, "Alpha LLC", records[0].CompanyName)
	assert.Equal(t, "Bravo LLC", records[1].CompanyName)
	assert.Equal(t, "Charlie LLC", records[2].CompanyName)
	assert.Equal(t, "2024-12-31", records[0].FilingPeriod)
}

func TestExtractHistoricalSkipsBadPeriod(t *testing.T) {
	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31"), period("2024-09-30")},
		content: map[string]string{
			"2024-09-30": taggedContent("Bravo LLC", "6/15/2028", 200),
		},
		fetchErr: map[string]error{
			"2024-12-31": fmt.Errorf("edgar: HTTP 503"),
		},
	}

	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.NoError(t, err, "one bad period must not fail the ticker")
	require.Len(t, records, 1)
	assert.Equal(t, "Bravo LLC", records[0].CompanyName)
}

func TestExtractHistoricalListPeriodsFatal(t *testing.T) {
	fetcher := &fakeFetcher{listErr: fmt.Errorf("edgar: HTTP 503")}
	_, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.Error(t, err, "an unavailable period listing is the one fatal path")
}

func TestExtractHistoricalDedupAcrossPeriods(t *testing.T) {
	// The same holding disclosed identically in two adjacent quarters
	// collapses to the most recent disclosure.
	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31"), period("2024-09-30")},
		content: map[string]string{
			"2024-12-31": taggedContent("Alpha LLC", "6/15/2027", 100),
			"2024-09-30": taggedContent("Alpha LLC", "6/15/2027", 100),
		},
	}

	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-12-31", records[0].FilingPeriod)
}

func TestExtractHistoricalEmptyContent(t *testing.T) {
	fetcher := &fakeFetcher{periods: []Period{period("2024-12-31")}}
	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.NoError(t, err)
	assert.Empty(t, records, "a period with no filing yields zero records")
}

func TestExtractHistoricalCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31")},
		content: map[string]string{"2024-12-31": taggedContent("Alpha LLC", "6/15/2027", 100)},
	}
	_, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(ctx, "ZZZZ", 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractHistoricalFallbackMerge(t *testing.T) {
	// Tagged facts carry amounts but no dates; the rendered table carries
	// the dates. ARCC's strategy declares the fallback, so the two passes
	// merge per holding.
	content := taggedContent("Acme Holdings, LLC", "", 100) + `
<table>
<tr><td>Portfolio Company</td><td>Type of Investment</td><td>Acquisition Date</td><td>Maturity Date</td><td>Fair Value</td></tr>
<tr><td>ACME HOLDINGS LLC</td><td>First lien senior secured loan</td><td>6/15/2021</td><td>6/15/2027</td><td>12,100</td></tr>
</table>`

	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31")},
		content: map[string]string{"2024-12-31": content},
	}

	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ARCC", 2)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Acme Holdings, LLC", rec.CompanyName, "tagged-pass identity wins")
	assert.Equal(t, "2021-06-15", rec.AcquisitionDate, "fallback fills the missing date")
	assert.Equal(t, "2027-06-15", rec.MaturityDate)
	require.NotNil(t, rec.Principal)
	assert.Equal(t, float64(100), *rec.Principal, "tagged principal survives the merge")
}

func TestExtractHistoricalRateFinalization(t *testing.T) {
	// A holding disclosing only a reference rate, with no spread or all-in
	// rate, ends up with no rate information at all.
	content := `
<xbrli:context id="c1">
  <xbrldi:explicitMember dimension="us-gaap:InvestmentIdentifierAxis">h1</xbrldi:explicitMember>
</xbrli:context>
<ix:nonNumeric name="us-gaap:InvestmentIssuerNameTextBlock" contextRef="c1">Acme Holdings, LLC</ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentVariableRateBasis" contextRef="c1">SOFR</ix:nonNumeric>`

	fetcher := &fakeFetcher{
		periods: []Period{period("2024-12-31")},
		content: map[string]string{"2024-12-31": content},
	}

	records, err := newTestHistoricalExtractor(t, fetcher).ExtractHistorical(context.Background(), "ZZZZ", 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].RateFormula)
	assert.Equal(t, RefNone, records[0].ReferenceRate, "a bare reference rate carries no rate information")
}
