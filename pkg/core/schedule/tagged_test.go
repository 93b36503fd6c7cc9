package schedule

import "testing"

// taggedFixture is a minimal inline-XBRL fragment: two holding-scoped
// contexts and one entity-wide context whose facts must not produce records.
const taggedFixture = `
<html><body>
<xbrli:context id="c_holding_1">
  <xbrli:entity>
    <xbrldi:explicitMember dimension="us-gaap:InvestmentIdentifierAxis">acme_first_lien</xbrldi:explicitMember>
  </xbrli:entity>
</xbrli:context>
<xbrli:context id="c_holding_2">
  <xbrli:entity>
    <xbrldi:explicitMember dimension="us-gaap:InvestmentIdentifierAxis">beta_equity</xbrldi:explicitMember>
  </xbrli:entity>
</xbrli:context>
<xbrli:context id="c_entity">
  <xbrli:entity></xbrli:entity>
</xbrli:context>

<ix:nonNumeric name="us-gaap:InvestmentIssuerNameTextBlock" contextRef="c_holding_1">Acme Holdings, LLC</ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentTypeTextBlock" contextRef="c_holding_1">First lien senior secured loan</ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentMaturityDate" contextRef="c_holding_1">6/15/2027</ix:nonNumeric>
<ix:nonFraction name="us-gaap:InvestmentInterestRate" contextRef="c_holding_1">11.25</ix:nonFraction>
<ix:nonFraction name="us-gaap:InvestmentOwnedBalancePrincipalAmount" contextRef="c_holding_1" scale="3">12,500</ix:nonFraction>
<ix:nonFraction name="us-gaap:InvestmentOwnedAtFairValue" contextRef="c_holding_1" scale="3" sign="-">250</ix:nonFraction>

<ix:nonNumeric name="us-gaap:InvestmentIssuerNameTextBlock" contextRef="c_holding_2"><span>Beta Corp</span></ix:nonNumeric>
<ix:nonNumeric name="us-gaap:InvestmentTypeTextBlock" contextRef="c_holding_2">Common Stock</ix:nonNumeric>
<ix:nonFraction name="us-gaap:InvestmentOwnedBalanceShares" contextRef="c_holding_2">1,000</ix:nonFraction>

<ix:nonFraction name="us-gaap:GrossInvestmentIncomeOperating" contextRef="c_entity" scale="6">312</ix:nonFraction>
<ix:nonNumeric name="us-gaap:InvestmentIssuerNameTextBlock" contextRef="c_entity">Should Not Appear</ix:nonNumeric>
</body></html>`

func newTestExtractor() *TaggedFactExtractor {
	return NewTaggedFactExtractor([]string{"us-gaap", "srt", "dei"}, NewConceptClassifier(nil))
}

func TestScanFacts(t *testing.T) {
	facts := newTestExtractor().ScanFacts(taggedFixture)
	if len(facts) != 11 {
		t.Fatalf("expected 11 facts, got %d", len(facts))
	}

	byName := make(map[string]TaggedFact)
	for _, f := range facts {
		if f.ContextRef == "c_holding_1" {
			byName[f.Name] = f
		}
	}
	principal := byName["us-gaap:InvestmentOwnedBalancePrincipalAmount"]
	if principal.Scale != 3 || principal.Value != "12,500" {
		t.Errorf("scale/value not captured: %+v", principal)
	}
	fv := byName["us-gaap:InvestmentOwnedAtFairValue"]
	if fv.Sign != "-" {
		t.Errorf("sign attribute not captured: %+v", fv)
	}
}

func TestScanFactsStripsNestedMarkup(t *testing.T) {
	facts := newTestExtractor().ScanFacts(taggedFixture)
	for _, f := range facts {
		if f.ContextRef == "c_holding_2" && f.Name == "us-gaap:InvestmentIssuerNameTextBlock" {
			if f.Value != "Beta Corp" {
				t.Errorf("nested span should be stripped, got %q", f.Value)
			}
			return
		}
	}
	t.Fatal("fact not found")
}

func TestExtractTaggedRecords(t *testing.T) {
	records := newTestExtractor().Extract("ARCC", "2024-12-31", taggedFixture)
	if len(records) != 2 {
		t.Fatalf("expected 2 holding records, got %d", len(records))
	}

	first := records[0]
	if first.CompanyName != "Acme Holdings, LLC" {
		t.Errorf("company = %q", first.CompanyName)
	}
	if first.InvestmentType != TypeFirstLien {
		t.Errorf("type = %q", first.InvestmentType)
	}
	if first.MaturityDate != "2027-06-15" {
		t.Errorf("maturity = %q", first.MaturityDate)
	}
	if first.Principal == nil || *first.Principal != 12500000 {
		t.Errorf("principal scale not applied: %v", first.Principal)
	}
	if first.FairValue == nil || *first.FairValue != -250000 {
		t.Errorf("fair value sign not applied: %v", first.FairValue)
	}
	if first.Provenance != "c_holding_1" {
		t.Errorf("provenance = %q", first.Provenance)
	}

	second := records[1]
	if second.CompanyName != "Beta Corp" || second.InvestmentType != TypeEquity {
		t.Errorf("second record: %q / %q", second.CompanyName, second.InvestmentType)
	}
	if second.SharesOrUnits == nil || *second.SharesOrUnits != 1000 {
		t.Errorf("shares = %v", second.SharesOrUnits)
	}

	for _, rec := range records {
		if rec.CompanyName == "Should Not Appear" {
			t.Error("entity-wide context leaked into holding records")
		}
	}
}

func TestExtractIgnoresForeignPrefixes(t *testing.T) {
	content := `
<xbrli:context id="c1">
  <xbrldi:explicitMember dimension="us-gaap:InvestmentIdentifierAxis">x</xbrldi:explicitMember>
</xbrli:context>
<ix:nonNumeric name="acme:InvestmentIssuerNameTextBlock" contextRef="c1">Acme</ix:nonNumeric>`

	if records := newTestExtractor().Extract("T", "2024-12-31", content); len(records) != 0 {
		t.Fatalf("facts under unaccepted prefixes must be ignored, got %d records", len(records))
	}

	ext := NewTaggedFactExtractor([]string{"us-gaap", "acme"}, NewConceptClassifier(nil))
	if records := ext.Extract("T", "2024-12-31", content); len(records) != 1 {
		t.Fatalf("extension prefix not accepted, got %d records", len(records))
	}
}
