// Package report renders extraction output: per-ticker CSV files with a
// stable column order, field fill-rate summaries over those files, and a
// markdown quality report.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bdc_soi/pkg/core/schedule"
)

// Columns is the CSV header, in output order. Downstream consumers join on
// these names, so the order is part of the output contract.
func Columns() []string {
	return []string{
		"ticker",
		"filing_period",
		"portfolio_company_name",
		"investment_type",
		"industry",
		"acquisition_date",
		"maturity_date",
		"interest_rate",
		"reference_rate",
		"spread",
		"floor_rate",
		"pik_rate",
		"rate_formula",
		"principal",
		"cost",
		"fair_value",
		"shares_or_units",
		"provenance",
	}
}

// WriteCSV writes records to w with the Columns header. Nil numeric fields
// render as empty cells.
func WriteCSV(w io.Writer, records []*schedule.InvestmentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating parent directories.
func WriteCSVFile(path string, records []*schedule.InvestmentRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteCSV(f, records); err != nil {
		return err
	}
	return f.Close()
}

func recordRow(rec *schedule.InvestmentRecord) []string {
	return []string{
		rec.Ticker,
		rec.FilingPeriod,
		rec.CompanyName,
		string(rec.InvestmentType),
		rec.Industry,
		rec.AcquisitionDate,
		rec.MaturityDate,
		formatFloat(rec.InterestRate),
		string(rec.ReferenceRate),
		formatFloat(rec.Spread),
		formatFloat(rec.FloorRate),
		formatFloat(rec.PIKRate),
		rec.RateFormula,
		formatFloat(rec.Principal),
		formatFloat(rec.Cost),
		formatFloat(rec.FairValue),
		formatFloat(rec.SharesOrUnits),
		rec.Provenance,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return trimZeros(fmt.Sprintf("%.4f", *v))
}

func trimZeros(s string) string {
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
