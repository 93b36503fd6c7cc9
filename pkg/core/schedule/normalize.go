package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

// dateLayouts covers the formats BDC filings actually use for acquisition and
// maturity dates: numeric slash forms, spelled-out month forms, ISO, and the
// compact form inline XBRL date facts sometimes carry.
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2006-01-02",
	"20060102",
	"January 2006",
	"Jan 2006",
	"1/2006",
	"01/2006",
}

var footnotePattern = regexp.MustCompile(`\(\d+\)`)

// NormalizeDate parses heterogeneous date text into canonical "2006-01-02"
// form. Unparsable text yields "": dates are frequently partially disclosed
// and a missing date is not an error.
func NormalizeDate(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	// Filings pad cells with NBSP and footnote markers like "(3)".
	s = strings.ReplaceAll(s, " ", " ")
	s = footnotePattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// =============================================================================
// RATE FORMULA NORMALIZATION
// =============================================================================

// RateFormula derives the canonical display string for how a holding's rate
// is computed:
//
//	SOFR + 5.00%              reference rate plus spread
//	12.30% Fixed              all-in rate with no reference rate
//	SOFR + 5.00% + 1.50% PIK  either form with a PIK component appended
//	1.50% PIK                 PIK-only holdings
//
// Returns "" when no rate information is present.
func RateFormula(ref ReferenceRate, spread, interest, pik *float64) string {
	var base string
	switch {
	case ref != RefNone && ref != RefFixed && spread != nil:
		base = fmt.Sprintf("%s + %.2f%%", ref, *spread)
	case interest != nil:
		// Floating holdings that disclose only the all-in rate (no spread)
		// are rendered as fixed: the all-in number is all we can state.
		base = fmt.Sprintf("%.2f%% Fixed", *interest)
	}

	if pik != nil {
		if base == "" {
			return fmt.Sprintf("%.2f%% PIK", *pik)
		}
		return base + fmt.Sprintf(" + %.2f%% PIK", *pik)
	}
	return base
}

// finalizeRates applies the rate formula and enforces its invariant: the
// formula is empty iff no usable rate component exists on the record. A bare
// reference rate with neither spread nor all-in rate carries no rate
// information and is cleared.
func finalizeRates(r *InvestmentRecord) {
	r.RateFormula = RateFormula(r.ReferenceRate, r.Spread, r.InterestRate, r.PIKRate)
	if r.RateFormula == "" {
		r.ReferenceRate = RefNone
		r.Spread = nil
	}
}

// NormalizeReferenceRate maps benchmark text ("SOFR", "3M LIBOR", "Prime",
// "L+", "S +") onto the reference rate enum.
func NormalizeReferenceRate(text string) ReferenceRate {
	norm := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case norm == "":
		return RefNone
	case strings.Contains(norm, "SOFR"), strings.HasPrefix(norm, "S +"), strings.HasPrefix(norm, "S+"):
		return RefSOFR
	case strings.Contains(norm, "LIBOR"), strings.HasPrefix(norm, "L +"), strings.HasPrefix(norm, "L+"):
		return RefLIBOR
	case strings.Contains(norm, "PRIME"), strings.HasPrefix(norm, "P +"), strings.HasPrefix(norm, "P+"):
		return RefPrime
	case strings.Contains(norm, "FIXED"):
		return RefFixed
	}
	return RefNone
}

// =============================================================================
// NUMERIC PARSING
// =============================================================================

var numericPattern = regexp.MustCompile(`-?[\d.]+`)

// ParseNumeric extracts a numeric value from schedule cell or fact text.
// Handles thousand separators, currency symbols, accounting-style negatives
// in parentheses and trailing % signs. Returns nil for dashes, N/A and
// anything else that does not contain a number.
func ParseNumeric(text string) *float64 {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" || s == "—" || s == "–" || strings.EqualFold(s, "N/A") {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, " ", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}

	match := numericPattern.FindString(s)
	if match == "" {
		return nil
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	if negative {
		val = -val
	}
	return &val
}

// formatAmount renders a numeric for dedup keys and CSV cells without
// trailing-zero noise.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
