package schedule

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// LexiconConfig carries lexicon additions loaded from configuration, so
// synonym lists can grow per issuer without touching parsing control flow.
// All fields are optional; a nil config means built-in lexicons only.
type LexiconConfig struct {
	// ConceptFragments adds concept-name fragments per category, applied to
	// every issuer.
	ConceptFragments map[Category][]string
	// HeaderSynonyms adds fallback-table header synonyms per category,
	// applied to every issuer.
	HeaderSynonyms map[Category][]string
	// Issuers adds or overrides per-ticker configuration.
	Issuers map[string]IssuerOverride
}

// IssuerOverride is the per-ticker portion of a LexiconConfig.
type IssuerOverride struct {
	Prefixes       []string
	HeaderSynonyms map[Category][]string
	// HTMLFallback enables or disables the HTML fallback for the ticker;
	// nil keeps the built-in setting.
	HTMLFallback *bool
}

// rawLexiconConfig mirrors the YAML layout with plain string keys.
type rawLexiconConfig struct {
	ConceptFragments map[string][]string          `yaml:"concept_fragments"`
	HeaderSynonyms   map[string][]string          `yaml:"header_synonyms"`
	Issuers          map[string]rawIssuerOverride `yaml:"issuers"`
}

type rawIssuerOverride struct {
	Prefixes       []string            `yaml:"prefixes"`
	HeaderSynonyms map[string][]string `yaml:"header_synonyms"`
	HTMLFallback   *bool               `yaml:"html_fallback"`
}

// LoadLexiconConfig reads a YAML lexicon file. A missing path is not an
// error; it returns a nil config and the built-in lexicons apply.
func LoadLexiconConfig(path string) (*LexiconConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lexicon config: %w", err)
	}

	var raw rawLexiconConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing lexicon config: %w", err)
	}

	cfg := &LexiconConfig{
		ConceptFragments: toCategoryMap(raw.ConceptFragments),
		HeaderSynonyms:   toCategoryMap(raw.HeaderSynonyms),
	}
	if len(raw.Issuers) > 0 {
		cfg.Issuers = make(map[string]IssuerOverride, len(raw.Issuers))
		for ticker, ro := range raw.Issuers {
			cfg.Issuers[ticker] = IssuerOverride{
				Prefixes:       ro.Prefixes,
				HeaderSynonyms: toCategoryMap(ro.HeaderSynonyms),
				HTMLFallback:   ro.HTMLFallback,
			}
		}
	}
	return cfg, nil
}

func toCategoryMap(raw map[string][]string) map[Category][]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[Category][]string, len(raw))
	for key, vals := range raw {
		out[Category(key)] = vals
	}
	return out
}
