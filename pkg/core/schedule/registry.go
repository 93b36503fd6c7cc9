package schedule

import "strings"

// Strategy is a per-issuer parsing strategy. Every strategy can locate
// holding anchors in tagged facts; issuers whose tagged data is chronically
// incomplete additionally declare the HTML-fallback capability.
type Strategy interface {
	Name() string
	ExtractTagged(ticker, period, content string) []*InvestmentRecord
	SupportsHTMLFallback() bool
	ExtractFallback(ticker, period, html string) []FallbackRow
}

// issuerConfig captures everything that actually varies per issuer: the
// extension taxonomy prefixes the ticker files under, extra concept-name
// fragments for the classifier, and extra table-header synonyms for the
// fallback parser.
type issuerConfig struct {
	Prefixes        []string
	ConceptExtras   map[Category][]string
	HeaderExtras    map[Category][]string
	UseHTMLFallback bool
}

// issuerOverrides is the variance table validated against real filings.
// Every listed ticker carries the HTML fallback; the per-ticker extras
// reflect how each issuer labels its schedule. Unlisted tickers get the
// generic tagged-only strategy.
var issuerOverrides = map[string]issuerConfig{
	"ARCC": {
		Prefixes:        []string{"arcc"},
		HeaderExtras:    map[Category][]string{CatCompanyName: {"company(1)"}},
		UseHTMLFallback: true,
	},
	"FSK": {
		Prefixes:        []string{"fsk", "fskr"},
		HeaderExtras:    map[Category][]string{CatAcquisitionDate: {"footnotes"}},
		UseHTMLFallback: true,
	},
	"OBDC": {
		Prefixes:        []string{"obdc", "orcc"},
		UseHTMLFallback: true,
	},
	"ORCC": {
		Prefixes:        []string{"orcc"},
		UseHTMLFallback: true,
	},
	"BXSL": {
		Prefixes:        []string{"bxsl"},
		HeaderExtras:    map[Category][]string{CatReferenceRate: {"reference rate and spread"}},
		UseHTMLFallback: true,
	},
	"GBDC": {
		Prefixes:        []string{"gbdc"},
		ConceptExtras:   map[Category][]string{CatInvestmentType: {"onestop"}},
		UseHTMLFallback: true,
	},
	"OCSL": {
		Prefixes:        []string{"ocsl", "fsc"},
		UseHTMLFallback: true,
	},
	"PSEC": {
		Prefixes:        []string{"psec"},
		HeaderExtras:    map[Category][]string{CatAcquisitionDate: {"date acquired"}},
		UseHTMLFallback: true,
	},
	"MAIN": {
		Prefixes:        []string{"main"},
		HeaderExtras:    map[Category][]string{CatInvestmentType: {"type of investment(2)"}},
		UseHTMLFallback: true,
	},
	"HTGC": {
		Prefixes:        []string{"htgc"},
		HeaderExtras:    map[Category][]string{CatInvestmentType: {"sub-industry"}},
		UseHTMLFallback: true,
	},
	"TSLX": {
		Prefixes:        []string{"tslx"},
		UseHTMLFallback: true,
	},
	"MFIC": {
		Prefixes:        []string{"mfic", "ainv"},
		UseHTMLFallback: true,
	},
	"BBDC": {
		Prefixes:        []string{"bbdc"},
		UseHTMLFallback: true,
	},
	"NMFC": {
		Prefixes:        []string{"nmfc"},
		UseHTMLFallback: true,
	},
	"PFLT": {
		Prefixes:        []string{"pflt"},
		UseHTMLFallback: true,
	},
	"TCPC": {
		Prefixes:        []string{"tcpc"},
		UseHTMLFallback: true,
	},
	"GSBD": {
		Prefixes:        []string{"gsbd"},
		UseHTMLFallback: true,
	},
	"CGBD": {
		Prefixes:        []string{"cgbd"},
		UseHTMLFallback: true,
	},
}

// standardPrefixes are the taxonomy prefixes accepted for every issuer.
var standardPrefixes = []string{"us-gaap", "srt", "dei"}

// issuerStrategy implements Strategy for one configuration. The generic
// strategy is an issuerStrategy with no extras and no fallback.
type issuerStrategy struct {
	name     string
	tagged   *TaggedFactExtractor
	fallback *HTMLFallbackParser
}

func (s *issuerStrategy) Name() string { return s.name }

func (s *issuerStrategy) ExtractTagged(ticker, period, content string) []*InvestmentRecord {
	return s.tagged.Extract(ticker, period, content)
}

func (s *issuerStrategy) SupportsHTMLFallback() bool { return s.fallback != nil }

func (s *issuerStrategy) ExtractFallback(ticker, period, html string) []FallbackRow {
	if s.fallback == nil {
		return nil
	}
	return s.fallback.Parse(ticker, period, html)
}

// Registry maps issuer tickers to parsing strategies. It is built once and
// read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	generic    Strategy
	strategies map[string]Strategy
}

// NewRegistry constructs the registry from the built-in variance table plus
// optional lexicon overrides loaded from configuration (see LexiconConfig).
func NewRegistry(cfg *LexiconConfig) *Registry {
	r := &Registry{
		strategies: make(map[string]Strategy, len(issuerOverrides)),
	}
	r.generic = buildStrategy("generic", "", issuerConfig{}, cfg)
	for ticker, ic := range issuerOverrides {
		r.strategies[ticker] = buildStrategy(strings.ToLower(ticker), ticker, ic, cfg)
	}
	if cfg != nil {
		for ticker, override := range cfg.Issuers {
			ticker = strings.ToUpper(ticker)
			base := issuerOverrides[ticker]
			r.strategies[ticker] = buildStrategy(strings.ToLower(ticker), ticker, base.merged(override), cfg)
		}
	}
	return r
}

// Resolve returns the issuer-specific strategy when one is registered and
// the generic strategy otherwise. An unrecognized ticker is not an error:
// absence of a specific strategy is the default path.
func (r *Registry) Resolve(ticker string) Strategy {
	if s, ok := r.strategies[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return s
	}
	return r.generic
}

func buildStrategy(name, ticker string, ic issuerConfig, cfg *LexiconConfig) Strategy {
	prefixes := append([]string{}, standardPrefixes...)
	if ticker != "" {
		prefixes = append(prefixes, strings.ToLower(ticker))
	}
	prefixes = append(prefixes, ic.Prefixes...)

	conceptExtras := ic.ConceptExtras
	headerExtras := ic.HeaderExtras
	if cfg != nil {
		conceptExtras = mergeExtras(cfg.ConceptFragments, conceptExtras)
		headerExtras = mergeExtras(cfg.HeaderSynonyms, headerExtras)
	}

	s := &issuerStrategy{
		name:   name,
		tagged: NewTaggedFactExtractor(prefixes, NewConceptClassifier(conceptExtras)),
	}
	if ic.UseHTMLFallback {
		s.fallback = NewHTMLFallbackParser(headerExtras)
	}
	return s
}

func mergeExtras(global, issuer map[Category][]string) map[Category][]string {
	if len(global) == 0 {
		return issuer
	}
	merged := make(map[Category][]string, len(global)+len(issuer))
	for cat, syns := range global {
		merged[cat] = append(merged[cat], syns...)
	}
	for cat, syns := range issuer {
		merged[cat] = append(merged[cat], syns...)
	}
	return merged
}

func (ic issuerConfig) merged(o IssuerOverride) issuerConfig {
	out := ic
	out.Prefixes = append(append([]string{}, ic.Prefixes...), o.Prefixes...)
	if o.HTMLFallback != nil {
		out.UseHTMLFallback = *o.HTMLFallback
	}
	if len(o.HeaderSynonyms) > 0 {
		out.HeaderExtras = mergeExtras(ic.HeaderExtras, o.HeaderSynonyms)
	}
	return out
}
