package schedule

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TaggedFact is a single inline-XBRL data point: a taxonomy-qualified concept
// name anchored to a reporting context.
type TaggedFact struct {
	Name       string // e.g. "us-gaap:InvestmentOwnedAtFairValue"
	ContextRef string
	Value      string
	Sign       string // "-" when the fact carries a sign attribute
	Scale      int    // power-of-ten scale attribute, 0 when absent
}

// TaggedFactExtractor scans raw filing text for inline-XBRL facts, keeps the
// ones scoped to a specific holding via their anchoring context, and groups
// them into partial records, one per context.
type TaggedFactExtractor struct {
	prefixes   []string // accepted taxonomy prefixes, lowercased
	classifier *ConceptClassifier
}

// NewTaggedFactExtractor builds an extractor for the given taxonomy prefixes
// (the standard taxonomy plus issuer extension taxonomies).
func NewTaggedFactExtractor(prefixes []string, classifier *ConceptClassifier) *TaggedFactExtractor {
	lowered := make([]string, len(prefixes))
	for i, p := range prefixes {
		lowered[i] = strings.ToLower(p)
	}
	return &TaggedFactExtractor{prefixes: lowered, classifier: classifier}
}

// Fact and context scanning is regex-based over the raw document rather than
// DOM-based: filings run to tens of MB and inline XBRL tags survive the
// issuers' broken HTML far more reliably than their tag nesting does.
var (
	factPattern = regexp.MustCompile(
		`(?is)<ix:(nonfraction|nonnumeric)\s+([^>]*)>(.*?)</ix:(?:nonfraction|nonnumeric)>`)
	attrPattern    = regexp.MustCompile(`(?i)([a-zA-Z:-]+)\s*=\s*"([^"]*)"`)
	contextPattern = regexp.MustCompile(`(?is)<xbrli:context\s+id="([^"]+)"\s*>(.*?)</xbrli:context>`)
	dimPattern     = regexp.MustCompile(`(?i)dimension\s*=\s*"([^"]*)"`)
	tagStrip       = regexp.MustCompile(`<[^>]+>`)
)

// holdingContexts returns the set of context IDs that anchor facts to a
// specific holding: contexts carrying a member on an investment-identifier
// axis. Contexts without such a dimension are entity-wide and out of scope
// for per-holding extraction.
func holdingContexts(content string) map[string]bool {
	scoped := make(map[string]bool)
	for _, m := range contextPattern.FindAllStringSubmatch(content, -1) {
		id, body := m[1], m[2]
		for _, dm := range dimPattern.FindAllStringSubmatch(body, -1) {
			dim := strings.ToLower(dm[1])
			if strings.Contains(dim, "investmentidentifier") ||
				(strings.Contains(dim, "investment") && strings.Contains(dim, "axis")) {
				scoped[id] = true
				break
			}
		}
	}
	return scoped
}

// ScanFacts extracts all inline-XBRL facts whose taxonomy prefix is in the
// target set.
func (e *TaggedFactExtractor) ScanFacts(content string) []TaggedFact {
	var facts []TaggedFact
	for _, m := range factPattern.FindAllStringSubmatch(content, -1) {
		attrs := make(map[string]string)
		for _, am := range attrPattern.FindAllStringSubmatch(m[2], -1) {
			attrs[strings.ToLower(am[1])] = am[2]
		}
		name := attrs["name"]
		if name == "" || attrs["contextref"] == "" {
			continue
		}
		if !e.acceptsPrefix(name) {
			continue
		}
		scale := 0
		if s := attrs["scale"]; s != "" {
			scale, _ = strconv.Atoi(s)
		}
		facts = append(facts, TaggedFact{
			Name:       name,
			ContextRef: attrs["contextref"],
			Value:      strings.TrimSpace(tagStrip.ReplaceAllString(m[3], "")),
			Sign:       attrs["sign"],
			Scale:      scale,
		})
	}
	return facts
}

func (e *TaggedFactExtractor) acceptsPrefix(name string) bool {
	idx := strings.Index(name, ":")
	if idx < 0 {
		return false
	}
	prefix := strings.ToLower(name[:idx])
	for _, p := range e.prefixes {
		if prefix == p {
			return true
		}
	}
	return false
}

// Extract runs the tagged pass: scan facts, keep holding-scoped ones, group
// by anchoring context, classify each fact into a record field. One partial
// record per context; unassignable facts are ignored.
func (e *TaggedFactExtractor) Extract(ticker, period, content string) []*InvestmentRecord {
	scoped := holdingContexts(content)
	if len(scoped) == 0 {
		return nil
	}

	grouped := make(map[string][]TaggedFact)
	var order []string
	for _, f := range e.ScanFacts(content) {
		if !scoped[f.ContextRef] {
			continue
		}
		if _, seen := grouped[f.ContextRef]; !seen {
			order = append(order, f.ContextRef)
		}
		grouped[f.ContextRef] = append(grouped[f.ContextRef], f)
	}

	var records []*InvestmentRecord
	for _, ctx := range order {
		rec := &InvestmentRecord{
			Ticker:       ticker,
			FilingPeriod: period,
			Provenance:   ctx,
		}
		populated := false
		for _, f := range grouped[ctx] {
			if e.applyFact(rec, f) {
				populated = true
			}
		}
		if populated && rec.CompanyName != "" {
			records = append(records, rec)
		}
	}
	return records
}

// applyFact classifies one fact and sets the corresponding record field.
// Returns false when the fact is unclassifiable or its value normalizes to
// nothing; the field is simply left unset.
func (e *TaggedFactExtractor) applyFact(rec *InvestmentRecord, f TaggedFact) bool {
	cat, ok := e.classifier.Classify(f.Name)
	if !ok || !IsHoldingField(cat) {
		return false
	}

	switch cat {
	case CatCompanyName:
		if f.Value == "" {
			return false
		}
		rec.CompanyName = f.Value
	case CatInvestmentType:
		if f.Value == "" {
			return false
		}
		rec.InvestmentType = CanonicalInvestmentType(f.Value)
	case CatIndustry:
		if f.Value == "" {
			return false
		}
		rec.Industry = f.Value
	case CatAcquisitionDate:
		d := NormalizeDate(f.Value)
		if d == "" {
			return false
		}
		rec.AcquisitionDate = d
	case CatMaturityDate:
		d := NormalizeDate(f.Value)
		if d == "" {
			return false
		}
		rec.MaturityDate = d
	case CatReferenceRate:
		ref := NormalizeReferenceRate(f.Value)
		if ref == RefNone {
			return false
		}
		rec.ReferenceRate = ref
	case CatInterestRate:
		rec.InterestRate = factNumeric(f)
		return rec.InterestRate != nil
	case CatSpread:
		rec.Spread = factNumeric(f)
		return rec.Spread != nil
	case CatFloorRate:
		rec.FloorRate = factNumeric(f)
		return rec.FloorRate != nil
	case CatPIKRate:
		rec.PIKRate = factNumeric(f)
		return rec.PIKRate != nil
	case CatPrincipal:
		rec.Principal = factNumeric(f)
		return rec.Principal != nil
	case CatCost:
		rec.Cost = factNumeric(f)
		return rec.Cost != nil
	case CatFairValue:
		rec.FairValue = factNumeric(f)
		return rec.FairValue != nil
	case CatShares:
		rec.SharesOrUnits = factNumeric(f)
		return rec.SharesOrUnits != nil
	default:
		return false
	}
	return true
}

// factNumeric parses a fact value and applies its scale and sign attributes.
func factNumeric(f TaggedFact) *float64 {
	v := ParseNumeric(f.Value)
	if v == nil {
		return nil
	}
	val := *v
	if f.Scale != 0 {
		val *= math.Pow10(f.Scale)
	}
	if f.Sign == "-" {
		val = -val
	}
	return &val
}
