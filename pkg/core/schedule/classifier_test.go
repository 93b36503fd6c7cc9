package schedule

import "testing"

func TestClassifyConceptNames(t *testing.T) {
	c := NewConceptClassifier(nil)

	tests := []struct {
		name     string
		expected Category
	}{
		{"us-gaap:InvestmentOwnedAtFairValue", CatFairValue},
		{"us-gaap:InvestmentOwnedAtCost", CatCost},
		{"us-gaap:InvestmentOwnedBalancePrincipalAmount", CatPrincipal},
		{"us-gaap:InvestmentMaturityDate", CatMaturityDate},
		{"us-gaap:InvestmentAcquisitionDate", CatAcquisitionDate},
		{"us-gaap:InvestmentInterestRate", CatInterestRate},
		{"us-gaap:InvestmentBasisSpreadVariableRate", CatSpread},
		{"us-gaap:InvestmentInterestRatePaidInKind", CatPIKRate},
		{"us-gaap:InvestmentOwnedBalanceShares", CatShares},
		{"arcc:PortfolioCompanyNameTextBlock", CatCompanyName},
		{"srt:IndustrySectorAxis", CatIndustry},
		// Case variance across issuer extensions.
		{"FSK:MATURITYDATE", CatMaturityDate},
		{"obdc:maturitydate", CatMaturityDate},
		// Entity-level concepts classify but are not holding fields.
		{"us-gaap:CommonStockSharesOutstanding", CatSharesOutstanding},
		{"us-gaap:GrossInvestmentIncomeOperating", CatIncome},
		{"us-gaap:ManagementFeeExpense", CatExpense},
	}

	for _, tc := range tests {
		got, ok := c.Classify(tc.name)
		if !ok {
			t.Errorf("Classify(%q) matched nothing, want %q", tc.name, tc.expected)
			continue
		}
		if got != tc.expected {
			t.Errorf("Classify(%q) = %q, want %q", tc.name, got, tc.expected)
		}
	}
}

func TestClassifyUnknownConcept(t *testing.T) {
	c := NewConceptClassifier(nil)
	for _, name := range []string{"dei:EntityCentralIndexKey", "us-gaap:AmendmentFlag", ""} {
		if cat, ok := c.Classify(name); ok {
			t.Errorf("Classify(%q) = %q, want no match", name, cat)
		}
	}
}

func TestClassifierIssuerExtras(t *testing.T) {
	c := NewConceptClassifier(map[Category][]string{
		CatInvestmentType: {"onestop"},
	})
	got, ok := c.Classify("gbdc:OneStopLoanMember")
	if !ok || got != CatInvestmentType {
		t.Errorf("extra fragment not honored: got %q ok=%v", got, ok)
	}
}

func TestIsHoldingField(t *testing.T) {
	holding := []Category{CatCompanyName, CatMaturityDate, CatFairValue, CatShares}
	entity := []Category{CatIncome, CatNAVPerShare, CatTotalAssets, CatSharesOutstanding, CatExpense}

	for _, cat := range holding {
		if !IsHoldingField(cat) {
			t.Errorf("%q should be a holding field", cat)
		}
	}
	for _, cat := range entity {
		if IsHoldingField(cat) {
			t.Errorf("%q should be entity-level", cat)
		}
	}
}
