package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
)

// TrackedFields are the columns the fill-rate report measures. Identity
// columns (ticker, company name) are always populated so tracking them would
// only add noise; these are the fields that actually vary with extraction
// quality.
var TrackedFields = []string{
	"acquisition_date",
	"maturity_date",
	"interest_rate",
	"reference_rate",
	"spread",
	"floor_rate",
	"pik_rate",
	"rate_formula",
}

// FileStat is the fill-rate summary for one CSV file.
type FileStat struct {
	Path     string
	Ticker   string
	Rows     int
	FillRate map[string]float64 // field -> fraction of rows populated, 0..1
}

// Report aggregates fill-rate stats across a set of extraction CSVs.
type Report struct {
	Files []FileStat
	// Skipped lists files that could not be read or parsed, with the reason.
	Skipped map[string]string
}

// Analyze computes fill rates for each CSV path. Unreadable or malformed
// files are recorded in Skipped rather than failing the whole report. A file
// with a header but no data rows reports 0.0 for every tracked field.
func Analyze(paths []string) *Report {
	rep := &Report{Skipped: make(map[string]string)}
	for _, path := range paths {
		stat, err := analyzeFile(path)
		if err != nil {
			rep.Skipped[path] = err.Error()
			continue
		}
		rep.Files = append(rep.Files, stat)
	}
	sort.Slice(rep.Files, func(i, j int) bool {
		return rep.Files[i].Ticker < rep.Files[j].Ticker
	})
	return rep
}

func analyzeFile(path string) (FileStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileStat{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	stat, err := analyzeCSV(f)
	if err != nil {
		return FileStat{}, err
	}
	stat.Path = path
	return stat, nil
}

func analyzeCSV(r io.Reader) (FileStat, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return FileStat{}, fmt.Errorf("reading header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	for _, field := range TrackedFields {
		if _, ok := colIndex[field]; !ok {
			return FileStat{}, fmt.Errorf("column %q missing from header", field)
		}
	}

	stat := FileStat{FillRate: make(map[string]float64, len(TrackedFields))}
	filled := make(map[string]int, len(TrackedFields))
	tickerCol, hasTicker := colIndex["ticker"]
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return FileStat{}, fmt.Errorf("reading row: %w", err)
		}
		stat.Rows++
		if hasTicker && stat.Ticker == "" && tickerCol < len(row) {
			stat.Ticker = row[tickerCol]
		}
		for _, field := range TrackedFields {
			if i := colIndex[field]; i < len(row) && row[i] != "" {
				filled[field]++
			}
		}
	}

	for _, field := range TrackedFields {
		if stat.Rows == 0 {
			stat.FillRate[field] = 0
			continue
		}
		stat.FillRate[field] = float64(filled[field]) / float64(stat.Rows)
	}
	return stat, nil
}
