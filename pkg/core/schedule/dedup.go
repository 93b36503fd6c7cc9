package schedule

// Deduplicate removes records that are exact duplicates on the dedup key
// (company, investment type, acquisition date, maturity date, principal).
// Duplicates arise across overlapping disclosures in adjacent periods, so
// the key deliberately excludes the filing period: with periods ordered most
// recent first, the most recent disclosure of a holding wins. The first
// occurrence is kept and input order preserved, which makes the operation
// idempotent.
func Deduplicate(records []*InvestmentRecord) []*InvestmentRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0:0]
	for _, r := range records {
		key := r.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
