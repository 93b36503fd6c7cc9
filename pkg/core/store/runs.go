package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bdc_soi/pkg/core/schedule"
)

// Schema expected by SaveRun:
//
//	CREATE TABLE extraction_runs (
//	    id UUID PRIMARY KEY,
//	    ticker TEXT NOT NULL,
//	    years_back INT NOT NULL,
//	    record_count INT NOT NULL,
//	    started_at TIMESTAMPTZ NOT NULL,
//	    finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE investment_records (
//	    run_id UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
//	    filing_period TEXT NOT NULL,
//	    company_name TEXT NOT NULL,
//	    investment_type TEXT NOT NULL,
//	    industry TEXT,
//	    acquisition_date TEXT,
//	    maturity_date TEXT,
//	    interest_rate DOUBLE PRECISION,
//	    reference_rate TEXT,
//	    spread DOUBLE PRECISION,
//	    floor_rate DOUBLE PRECISION,
//	    pik_rate DOUBLE PRECISION,
//	    rate_formula TEXT,
//	    principal DOUBLE PRECISION,
//	    cost DOUBLE PRECISION,
//	    fair_value DOUBLE PRECISION,
//	    shares_or_units DOUBLE PRECISION,
//	    provenance TEXT
//	);

// SaveRun persists one extraction run and its records in a single
// transaction, returning the run ID. Disabled stores return uuid.Nil with
// no error.
func (s *Store) SaveRun(ctx context.Context, ticker string, yearsBack int, startedAt time.Time, records []*schedule.InvestmentRecord) (uuid.UUID, error) {
	if s.pool == nil {
		return uuid.Nil, nil
	}

	runID := uuid.New()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO extraction_runs (id, ticker, years_back, record_count, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, runID, ticker, yearsBack, len(records), startedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting run: %w", err)
	}

	for _, rec := range records {
		_, err = tx.Exec(ctx, `
			INSERT INTO investment_records (
				run_id, filing_period, company_name, investment_type, industry,
				acquisition_date, maturity_date,
				interest_rate, reference_rate, spread, floor_rate, pik_rate, rate_formula,
				principal, cost, fair_value, shares_or_units, provenance
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`, runID, rec.FilingPeriod, rec.CompanyName, string(rec.InvestmentType), rec.Industry,
			rec.AcquisitionDate, rec.MaturityDate,
			rec.InterestRate, string(rec.ReferenceRate), rec.Spread, rec.FloorRate, rec.PIKRate, rec.RateFormula,
			rec.Principal, rec.Cost, rec.FairValue, rec.SharesOrUnits, rec.Provenance)
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting record for %s: %w", rec.CompanyName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}
