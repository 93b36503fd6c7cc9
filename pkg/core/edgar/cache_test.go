package edgar

import (
	"context"
	"testing"

	"bdc_soi/pkg/core/schedule"
)

type countingFetcher struct {
	fetches int
	content string
}

func (f *countingFetcher) ListPeriods(ctx context.Context, ticker string, yearsBack int) ([]schedule.Period, error) {
	return []schedule.Period{periodForLabel("2024-12-31")}, nil
}

func (f *countingFetcher) FetchFiling(ctx context.Context, ticker string, period schedule.Period) (string, error) {
	f.fetches++
	return f.content, nil
}

func TestCachingFetcher(t *testing.T) {
	inner := &countingFetcher{content: "<html>body</html>"}
	cf, err := NewCachingFetcher(inner, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	p := periodForLabel("2024-12-31")

	for i := 0; i < 3; i++ {
		content, err := cf.FetchFiling(ctx, "ARCC", p)
		if err != nil {
			t.Fatal(err)
		}
		if content != inner.content {
			t.Fatalf("content = %q", content)
		}
	}
	if inner.fetches != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", inner.fetches)
	}
}

func TestCachingFetcherSkipsEmptyContent(t *testing.T) {
	inner := &countingFetcher{content: ""}
	cf, err := NewCachingFetcher(inner, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	p := periodForLabel("2024-12-31")
	for i := 0; i < 2; i++ {
		if _, err := cf.FetchFiling(ctx, "ARCC", p); err != nil {
			t.Fatal(err)
		}
	}
	if inner.fetches != 2 {
		t.Errorf("empty content must not be cached, got %d fetches", inner.fetches)
	}
}
