// Package schedule extracts Schedule of Investments line items from BDC
// filings. The entry point is HistoricalExtractor; the supporting pieces
// (tagged-fact extraction, HTML fallback parsing, normalization, dedup) are
// exported so issuer strategies and tests can exercise them directly.
package schedule

import "strings"

// ReferenceRate is the benchmark a floating-rate holding prices off.
type ReferenceRate string

const (
	RefSOFR  ReferenceRate = "SOFR"
	RefLIBOR ReferenceRate = "LIBOR"
	RefPrime ReferenceRate = "PRIME"
	RefFixed ReferenceRate = "Fixed"
	RefNone  ReferenceRate = ""
)

// InvestmentType is the canonical holding classification. Issuer labels vary
// wildly ("First lien senior secured loan", "Senior Secured First Lien Term
// Loan B", ...) and are folded into this fixed vocabulary.
type InvestmentType string

const (
	TypeFirstLien       InvestmentType = "First Lien Debt"
	TypeSecondLien      InvestmentType = "Second Lien Debt"
	TypeUnitranche      InvestmentType = "Unitranche Debt"
	TypeSubordinated    InvestmentType = "Subordinated Debt"
	TypeEquity          InvestmentType = "Equity"
	TypePreferredEquity InvestmentType = "Preferred Equity"
	TypeWarrant         InvestmentType = "Warrant"
	TypeStructured      InvestmentType = "Structured/Other"
)

// InvestmentRecord is one portfolio holding in one filing period.
// Dates are canonical "2006-01-02" strings, empty when undisclosed.
// Numeric fields are nil when the filing did not tag or tabulate them.
type InvestmentRecord struct {
	Ticker         string
	FilingPeriod   string // period end date, e.g. "2024-12-31"
	CompanyName    string
	InvestmentType InvestmentType
	Industry       string

	AcquisitionDate string
	MaturityDate    string

	InterestRate  *float64
	ReferenceRate ReferenceRate
	Spread        *float64
	FloorRate     *float64
	PIKRate       *float64
	RateFormula   string

	Principal     *float64
	Cost          *float64
	FairValue     *float64
	SharesOrUnits *float64

	// Provenance is the XBRL contextRef or table/row locator the record was
	// extracted from. Used for audit and for the fallback join.
	Provenance string
}

// DedupKey identifies a holding across overlapping disclosures. Two records
// agreeing on this key are the same holding.
func (r *InvestmentRecord) DedupKey() string {
	var sb strings.Builder
	sb.WriteString(normalizeCompanyName(r.CompanyName))
	sb.WriteByte('|')
	sb.WriteString(string(r.InvestmentType))
	sb.WriteByte('|')
	sb.WriteString(r.AcquisitionDate)
	sb.WriteByte('|')
	sb.WriteString(r.MaturityDate)
	sb.WriteByte('|')
	if r.Principal != nil {
		sb.WriteString(formatAmount(*r.Principal))
	}
	return sb.String()
}

// joinKey is the fuzzy key used to join fallback table rows back to
// tagged-pass records: normalized company name plus canonical type.
func (r *InvestmentRecord) joinKey() string {
	return normalizeCompanyName(r.CompanyName) + "|" + string(r.InvestmentType)
}

// corporate suffixes dropped during company-name normalization so that
// "Acme Holdings, LLC" and "ACME HOLDINGS LLC" join to the same holding
var companySuffixes = map[string]bool{
	"inc": true, "incorporated": true, "llc": true, "lp": true, "llp": true,
	"corp": true, "corporation": true, "co": true, "company": true,
	"ltd": true, "limited": true, "holdings": true, "holding": true,
	"intermediate": true, "parent": true,
}

// normalizeCompanyName lowercases, strips punctuation, collapses whitespace
// and drops trailing corporate suffixes. Periods are deleted rather than
// treated as separators so "L.P." folds to the "lp" suffix token.
func normalizeCompanyName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.':
		default:
			sb.WriteByte(' ')
		}
	}
	fields := strings.Fields(sb.String())
	// Drop suffix tokens from the tail only; "Co" inside a name is kept.
	for len(fields) > 1 && companySuffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// investmentTypeLexicon maps label fragments to the canonical vocabulary.
// Order matters: more specific fragments are listed before generic ones
// ("second lien" before "lien", "preferred" before "equity").
var investmentTypeLexicon = []struct {
	fragment string
	t        InvestmentType
}{
	{"second lien", TypeSecondLien},
	{"2nd lien", TypeSecondLien},
	{"first lien", TypeFirstLien},
	{"1st lien", TypeFirstLien},
	{"senior secured", TypeFirstLien},
	{"unitranche", TypeUnitranche},
	{"one stop", TypeUnitranche},
	{"subordinated", TypeSubordinated},
	{"mezzanine", TypeSubordinated},
	{"junior", TypeSubordinated},
	{"preferred", TypePreferredEquity},
	{"warrant", TypeWarrant},
	{"common equity", TypeEquity},
	{"common stock", TypeEquity},
	{"common units", TypeEquity},
	{"membership interest", TypeEquity},
	{"partnership interest", TypeEquity},
	{"equity", TypeEquity},
	{"structured", TypeStructured},
	{"clo", TypeStructured},
	{"joint venture", TypeStructured},
}

// CanonicalInvestmentType folds an issuer-specific label into the fixed
// vocabulary. Unrecognized labels land in Structured/Other rather than being
// dropped, so the holding is still emitted.
func CanonicalInvestmentType(label string) InvestmentType {
	norm := strings.ToLower(strings.TrimSpace(label))
	if norm == "" {
		return TypeStructured
	}
	norm = strings.Join(strings.Fields(norm), " ")
	for _, entry := range investmentTypeLexicon {
		if strings.Contains(norm, entry.fragment) {
			return entry.t
		}
	}
	// Bare "term loan" style labels with no lien marker are senior debt in
	// practice for these issuers.
	if strings.Contains(norm, "term loan") || strings.Contains(norm, "revolver") ||
		strings.Contains(norm, "revolving") || strings.Contains(norm, "delayed draw") {
		return TypeFirstLien
	}
	return TypeStructured
}
