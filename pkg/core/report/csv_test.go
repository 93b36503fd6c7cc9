package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"bdc_soi/pkg/core/schedule"
)

func floatPtr(f float64) *float64 { return &f }

func TestWriteCSVHeaderOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(buf.String())
	want := strings.Join(Columns(), ",")
	if got != want {
		t.Errorf("header = %q, want %q", got, want)
	}
}

func TestWriteCSVRows(t *testing.T) {
	records := []*schedule.InvestmentRecord{
		{
			Ticker:          "ARCC",
			FilingPeriod:    "2024-12-31",
			CompanyName:     "Acme Holdings, LLC",
			InvestmentType:  schedule.TypeFirstLien,
			Industry:        "Healthcare Providers",
			AcquisitionDate: "2021-06-15",
			MaturityDate:    "2027-06-15",
			InterestRate:    floatPtr(10.25),
			ReferenceRate:   schedule.RefSOFR,
			Spread:          floatPtr(5.5),
			RateFormula:     "SOFR + 5.50%",
			Principal:       floatPtr(12500000),
			FairValue:       floatPtr(12100000),
			Provenance:      "c_holding_1",
		},
		{
			Ticker:         "ARCC",
			FilingPeriod:   "2024-12-31",
			CompanyName:    "Beta Corp",
			InvestmentType: schedule.TypeEquity,
			SharesOrUnits:  floatPtr(1000),
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	col := make(map[string]int)
	for i, name := range rows[0] {
		col[name] = i
	}
	acme := rows[1]
	if acme[col["portfolio_company_name"]] != "Acme Holdings, LLC" {
		t.Errorf("company cell = %q", acme[col["portfolio_company_name"]])
	}
	if acme[col["spread"]] != "5.5" {
		t.Errorf("spread cell = %q", acme[col["spread"]])
	}
	if acme[col["principal"]] != "12500000" {
		t.Errorf("principal cell = %q", acme[col["principal"]])
	}
	if acme[col["rate_formula"]] != "SOFR + 5.50%" {
		t.Errorf("rate_formula cell = %q", acme[col["rate_formula"]])
	}

	// Undisclosed numerics are empty cells, not zeros.
	beta := rows[2]
	for _, field := range []string{"interest_rate", "spread", "principal", "fair_value", "acquisition_date"} {
		if beta[col[field]] != "" {
			t.Errorf("%s should be empty, got %q", field, beta[col[field]])
		}
	}
	if beta[col["shares_or_units"]] != "1000" {
		t.Errorf("shares cell = %q", beta[col["shares_or_units"]])
	}
}
