package schedule

import "strings"

// Category is the semantic bucket a tagged concept name falls into.
type Category string

const (
	// Holding-schedule field categories. These take precedence during
	// per-holding extraction.
	CatCompanyName     Category = "company_name"
	CatInvestmentType  Category = "investment_type"
	CatIndustry        Category = "industry"
	CatAcquisitionDate Category = "acquisition_date"
	CatMaturityDate    Category = "maturity_date"
	CatInterestRate    Category = "interest_rate"
	CatReferenceRate   Category = "reference_rate"
	CatSpread          Category = "spread"
	CatFloorRate       Category = "floor_rate"
	CatPIKRate         Category = "pik_rate"
	CatPrincipal       Category = "principal"
	CatCost            Category = "cost"
	CatFairValue       Category = "fair_value"
	CatShares          Category = "shares_or_units"

	// Entity-level categories.
	CatIncome            Category = "investment_income"
	CatNAVPerShare       Category = "nav_per_share"
	CatTotalAssets       Category = "total_assets"
	CatSharesOutstanding Category = "shares_outstanding"
	CatExpense           Category = "expense"
)

// lexiconEntry pairs a category with the name fragments that identify it.
// Matching is case-insensitive substring containment: issuers bolt arbitrary
// prefixes and suffixes onto extension concept names, so exact-name equality
// would miss most of them.
type lexiconEntry struct {
	category  Category
	fragments []string
}

// conceptLexicon is ordered by specificity. Holding-schedule fields come
// first so that an ambiguous name resolves to the per-holding category, and
// within the list longer, more specific fragments precede generic ones
// ("sharesoutstanding" before "shares", "spreadabove" before "spread").
var conceptLexicon = []lexiconEntry{
	{CatAcquisitionDate, []string{"acquisitiondate", "dateofinvestment", "investmentdate", "initialinvestment", "dateacquired", "originationdate"}},
	{CatMaturityDate, []string{"maturitydate", "maturity", "expirationdate"}},
	{CatPIKRate, []string{"paidinkind", "paymentinkind", "pikrate", "pikinterest", "ratepaidinkind"}},
	{CatFloorRate, []string{"floorrate", "interestratefloor", "floor"}},
	{CatSpread, []string{"basisspread", "spreadabove", "spreadover", "variablespread", "spread"}},
	{CatReferenceRate, []string{"referencerate", "benchmarkrate", "variableratebasis", "indexrate", "baserate"}},
	{CatInterestRate, []string{"effectiveinterestrate", "statedinterestrate", "interestrate", "couponrate", "cashrate"}},
	{CatPrincipal, []string{"principalamount", "paramount", "parvalue", "faceamount", "principal"}},
	{CatCost, []string{"amortizedcost", "costbasis", "investmentownedatcost", "cost"}},
	{CatFairValue, []string{"investmentownedatfairvalue", "fairvalue"}},
	{CatSharesOutstanding, []string{"sharesoutstanding", "unitsoutstanding", "sharesissuedandoutstanding"}},
	{CatShares, []string{"balanceshares", "numberofshares", "sharesheld", "unitsheld", "sharesorunits", "quantity", "numberofunits", "shares", "units"}},
	{CatCompanyName, []string{"portfoliocompany", "issuername", "investmentissuer", "companyname", "nameofissuer"}},
	{CatInvestmentType, []string{"investmenttype", "typeofinvestment", "securitytype"}},
	{CatIndustry, []string{"industrysector", "industryclassification", "industry", "sectorname"}},
	{CatIncome, []string{"investmentincome", "interestincome", "dividendincome", "feeincome", "otherincome"}},
	{CatNAVPerShare, []string{"netassetvaluepershare", "navpershare", "netassetspershare"}},
	{CatTotalAssets, []string{"totalassets", "assetstotal"}},
	{CatExpense, []string{"operatingexpense", "managementfee", "incentivefee", "interestexpense", "expense"}},
}

// ConceptClassifier buckets tagged-fact concept names into semantic
// categories. The matching is intentionally permissive: a false positive
// fails soft downstream when normalization yields an empty value.
type ConceptClassifier struct {
	lexicon []lexiconEntry
}

// NewConceptClassifier returns a classifier over the default lexicon, with
// extra per-issuer fragments appended to their categories.
func NewConceptClassifier(extra map[Category][]string) *ConceptClassifier {
	lexicon := make([]lexiconEntry, len(conceptLexicon))
	copy(lexicon, conceptLexicon)
	for i := range lexicon {
		if more, ok := extra[lexicon[i].category]; ok {
			merged := make([]string, 0, len(lexicon[i].fragments)+len(more))
			for _, f := range more {
				merged = append(merged, strings.ToLower(f))
			}
			merged = append(merged, lexicon[i].fragments...)
			lexicon[i].fragments = merged
		}
	}
	return &ConceptClassifier{lexicon: lexicon}
}

// Classify buckets a concept name. The taxonomy prefix ("us-gaap:",
// "arcc:") is ignored; matching runs over the lowercased local name.
// Returns ok=false for names matching no category.
func (c *ConceptClassifier) Classify(conceptName string) (Category, bool) {
	local := conceptName
	if idx := strings.LastIndex(local, ":"); idx >= 0 {
		local = local[idx+1:]
	}
	local = strings.ToLower(local)
	if local == "" {
		return "", false
	}
	for _, entry := range c.lexicon {
		for _, frag := range entry.fragments {
			if strings.Contains(local, frag) {
				return entry.category, true
			}
		}
	}
	return "", false
}

// IsHoldingField reports whether a category is a per-holding schedule field
// (as opposed to an entity-level total).
func IsHoldingField(cat Category) bool {
	switch cat {
	case CatIncome, CatNAVPerShare, CatTotalAssets, CatSharesOutstanding, CatExpense:
		return false
	}
	return true
}
