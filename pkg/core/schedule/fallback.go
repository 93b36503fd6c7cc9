package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLFallbackParser parses rendered investment-schedule tables when the
// tagged pass leaves required date fields empty. Columns are located by fuzzy
// header matching against a synonym table, so the parser survives the per-
// issuer drift in header wording.
type HTMLFallbackParser struct {
	synonyms map[Category][]string
}

// headerSynonyms is the default header lexicon. Matching is substring
// containment on normalized header text; longer synonyms are listed first so
// "reference rate" wins over "rate".
var headerSynonyms = map[Category][]string{
	CatCompanyName:     {"portfolio company", "company", "issuer", "investments"},
	CatInvestmentType:  {"type of investment", "investment type", "investment"},
	CatIndustry:        {"industry", "sector"},
	CatAcquisitionDate: {"acquisition date", "date of investment", "investment date", "date acquired", "initial acquisition"},
	CatMaturityDate:    {"maturity date", "maturity"},
	CatReferenceRate:   {"reference rate", "index"},
	CatSpread:          {"spread above index", "basis point spread", "spread"},
	CatInterestRate:    {"interest rate", "coupon", "rate"},
	CatFloorRate:       {"floor"},
	CatPrincipal:       {"principal amount", "par amount", "principal", "par"},
	CatCost:            {"amortized cost", "cost"},
	CatFairValue:       {"fair value", "value"},
	CatShares:          {"shares/units", "number of shares", "shares", "units", "quantity"},
}

// NewHTMLFallbackParser builds a parser with the default header lexicon plus
// issuer-specific synonym overrides prepended per category.
func NewHTMLFallbackParser(extra map[Category][]string) *HTMLFallbackParser {
	merged := make(map[Category][]string, len(headerSynonyms))
	for cat, syns := range headerSynonyms {
		merged[cat] = append(append([]string{}, extra[cat]...), syns...)
	}
	return &HTMLFallbackParser{synonyms: merged}
}

// FallbackRow is one table row keyed for the join back to tagged-pass
// records.
type FallbackRow struct {
	Key    string
	Record *InvestmentRecord
}

// Parse locates investment-schedule tables in rendered HTML and extracts one
// row per holding. HTML that fails to parse, tables with unmappable headers
// and rows with no usable cells are all skipped silently: the fallback pass
// can only ever add information.
func (p *HTMLFallbackParser) Parse(ticker, period, html string) []FallbackRow {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var rows []FallbackRow
	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		grid := buildGrid(table)
		if len(grid) < 2 {
			return
		}
		columns, headerRows := p.mapHeader(grid)
		if columns == nil {
			return
		}

		industryGroup := ""
		for rowIdx := headerRows; rowIdx < len(grid); rowIdx++ {
			row := grid[rowIdx]

			// Single-populated-cell rows are grouping headers; in most SOI
			// layouts they carry the industry for the rows beneath.
			if label, only := solePopulatedCell(row); only {
				industryGroup = label
				continue
			}

			rec := p.rowToRecord(ticker, period, row, columns)
			if rec == nil {
				continue
			}
			if rec.Industry == "" {
				rec.Industry = industryGroup
			}
			rec.Provenance = fmt.Sprintf("table:%d/row:%d", tableIdx, rowIdx)
			rows = append(rows, FallbackRow{Key: rec.joinKey(), Record: rec})
		}
	})
	return rows
}

// buildGrid expands an HTML table into a rectangular cell grid, resolving
// colspan and rowspan the same way the rendered layout does. Multi-line cell
// text is joined with single spaces.
func buildGrid(table *goquery.Selection) [][]string {
	trs := table.Find("tr")
	rowCount := trs.Length()
	if rowCount == 0 {
		return nil
	}

	maxCols := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		cols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			span, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
			if span < 1 {
				span = 1
			}
			cols += span
		})
		if cols > maxCols {
			maxCols = cols
		}
	})
	if maxCols == 0 {
		return nil
	}

	grid := make([][]string, rowCount)
	taken := make([][]bool, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
		taken[i] = make([]bool, maxCols)
	}

	rowIdx := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		colIdx := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			for colIdx < maxCols && taken[rowIdx][colIdx] {
				colIdx++
			}
			if colIdx >= maxCols {
				return
			}
			colspan, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
			rowspan, _ := strconv.Atoi(cell.AttrOr("rowspan", "1"))
			if colspan < 1 {
				colspan = 1
			}
			if rowspan < 1 {
				rowspan = 1
			}
			text := cellText(cell)
			for r := 0; r < rowspan && rowIdx+r < rowCount; r++ {
				for c := 0; c < colspan && colIdx+c < maxCols; c++ {
					taken[rowIdx+r][colIdx+c] = true
					// A merged header cell covers every logical column it
					// spans, so the text is repeated across the span.
					grid[rowIdx+r][colIdx+c] = text
				}
			}
			colIdx += colspan
		})
		rowIdx++
	})
	return grid
}

func cellText(cell *goquery.Selection) string {
	text := strings.ReplaceAll(cell.Text(), " ", " ")
	return strings.Join(strings.Fields(text), " ")
}

// mapHeader locates the header row(s) and returns a column-index → category
// mapping. A header can span up to three physical rows (merged super-headers
// over sub-headers); stacked cells are joined with whitespace before
// matching. Returns nil when the table does not look like an investment
// schedule (no company column, or fewer than three mapped columns).
func (p *HTMLFallbackParser) mapHeader(grid [][]string) (map[int]Category, int) {
	maxHeaderRows := 3
	if len(grid) < maxHeaderRows+1 {
		maxHeaderRows = len(grid) - 1
	}

	// Deeper stacks can map more columns (rowspan'd super-headers over date
	// sub-headers), so every depth is tried and the widest mapping wins. On a
	// tie the shallower mapping is kept: extra rows that map nothing new are
	// data, not header.
	var best map[int]Category
	bestDepth := 0
	for depth := 1; depth <= maxHeaderRows; depth++ {
		columns := make(map[int]Category)
		for col := 0; col < len(grid[0]); col++ {
			var parts []string
			for row := 0; row < depth; row++ {
				if cell := grid[row][col]; cell != "" && (len(parts) == 0 || parts[len(parts)-1] != cell) {
					parts = append(parts, cell)
				}
			}
			cat, ok := p.matchHeaderCell(strings.Join(parts, " "))
			if !ok {
				continue
			}
			if _, claimed := categoryClaimed(columns, cat); !claimed {
				columns[col] = cat
			}
		}
		if _, hasCompany := categoryClaimed(columns, CatCompanyName); hasCompany && len(columns) >= 3 && len(columns) > len(best) {
			best = columns
			bestDepth = depth
		}
	}
	return best, bestDepth
}

func categoryClaimed(columns map[int]Category, cat Category) (int, bool) {
	for col, c := range columns {
		if c == cat {
			return col, true
		}
	}
	return 0, false
}

// matchHeaderCell normalizes header text and matches it against the synonym
// table. Punctuation and case differences are tolerated.
func (p *HTMLFallbackParser) matchHeaderCell(text string) (Category, bool) {
	norm := normalizeHeader(text)
	if norm == "" {
		return "", false
	}
	// Fixed category order keeps matching deterministic when a header could
	// satisfy several synonym lists.
	ordered := []Category{
		CatAcquisitionDate, CatMaturityDate, CatReferenceRate, CatSpread,
		CatFloorRate, CatInterestRate, CatPrincipal, CatCost, CatFairValue,
		CatShares, CatIndustry, CatInvestmentType, CatCompanyName,
	}
	for _, cat := range ordered {
		for _, syn := range p.synonyms[cat] {
			if strings.Contains(norm, syn) {
				return cat, true
			}
		}
	}
	return "", false
}

func normalizeHeader(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '/':
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// solePopulatedCell reports whether exactly one distinct non-empty value is
// present in the row, returning it. Merged grouping rows repeat that value
// across the span, which is why distinct values are counted rather than
// cells.
func solePopulatedCell(row []string) (string, bool) {
	value := ""
	for _, cell := range row {
		if cell == "" || cell == value {
			continue
		}
		if value != "" {
			return "", false
		}
		value = cell
	}
	return value, value != ""
}

// rowToRecord extracts one holding from a data row using the header mapping.
// Malformed cells leave their field empty; the row is dropped only when no
// company name survives.
func (p *HTMLFallbackParser) rowToRecord(ticker, period string, row []string, columns map[int]Category) *InvestmentRecord {
	rec := &InvestmentRecord{Ticker: ticker, FilingPeriod: period}
	for col, cat := range columns {
		if col >= len(row) {
			continue
		}
		cell := row[col]
		if cell == "" {
			continue
		}
		switch cat {
		case CatCompanyName:
			rec.CompanyName = cell
		case CatInvestmentType:
			rec.InvestmentType = CanonicalInvestmentType(cell)
		case CatIndustry:
			rec.Industry = cell
		case CatAcquisitionDate:
			rec.AcquisitionDate = NormalizeDate(cell)
		case CatMaturityDate:
			rec.MaturityDate = NormalizeDate(cell)
		case CatReferenceRate:
			rec.ReferenceRate = NormalizeReferenceRate(cell)
		case CatInterestRate:
			p.applyRateCell(rec, cell)
		case CatSpread:
			rec.Spread = ParseNumeric(cell)
		case CatFloorRate:
			rec.FloorRate = ParseNumeric(cell)
		case CatPrincipal:
			rec.Principal = ParseNumeric(cell)
		case CatCost:
			rec.Cost = ParseNumeric(cell)
		case CatFairValue:
			rec.FairValue = ParseNumeric(cell)
		case CatShares:
			rec.SharesOrUnits = ParseNumeric(cell)
		}
	}
	if rec.CompanyName == "" {
		return nil
	}
	// Totals rows sometimes survive the grouping filter; they have amount
	// cells but a label that is not a company.
	lowered := strings.ToLower(rec.CompanyName)
	if strings.HasPrefix(lowered, "total") || strings.HasPrefix(lowered, "subtotal") {
		return nil
	}
	return rec
}

// applyRateCell handles compound rate cells like "SOFR + 5.50%",
// "L + 6.00% (1.00% Floor)" or "12.00% (incl. 2.00% PIK)", which many
// issuers print in a single column.
func (p *HTMLFallbackParser) applyRateCell(rec *InvestmentRecord, cell string) {
	ref := NormalizeReferenceRate(cell)
	lowered := strings.ToLower(cell)

	if idx := strings.Index(lowered, "floor"); idx >= 0 {
		// "(1.00% Floor)": the number immediately before the word.
		if v := ParseNumeric(lastNumberBefore(cell, idx)); v != nil {
			rec.FloorRate = v
		}
	}
	if idx := strings.Index(lowered, "pik"); idx >= 0 {
		if v := ParseNumeric(lastNumberBefore(cell, idx)); v != nil {
			rec.PIKRate = v
		}
	}

	if ref != RefNone && ref != RefFixed {
		rec.ReferenceRate = ref
		if plus := strings.Index(cell, "+"); plus >= 0 {
			if v := ParseNumeric(cell[plus+1:]); v != nil {
				rec.Spread = v
			}
		}
		return
	}
	rec.InterestRate = ParseNumeric(cell)
}

// lastNumberBefore returns the numeric token closest before position idx.
func lastNumberBefore(s string, idx int) string {
	matches := numericPattern.FindAllStringIndex(s[:idx], -1)
	if len(matches) == 0 {
		return ""
	}
	last := matches[len(matches)-1]
	return s[last[0]:last[1]]
}

// MergeFallback copies fallback values into a tagged-pass record for fields
// the tagged pass left empty. Populated fields are never overwritten.
func MergeFallback(dst *InvestmentRecord, src *InvestmentRecord) {
	if dst.AcquisitionDate == "" {
		dst.AcquisitionDate = src.AcquisitionDate
	}
	if dst.MaturityDate == "" {
		dst.MaturityDate = src.MaturityDate
	}
	if dst.Industry == "" {
		dst.Industry = src.Industry
	}
	if dst.ReferenceRate == RefNone {
		dst.ReferenceRate = src.ReferenceRate
	}
	if dst.InterestRate == nil {
		dst.InterestRate = src.InterestRate
	}
	if dst.Spread == nil {
		dst.Spread = src.Spread
	}
	if dst.FloorRate == nil {
		dst.FloorRate = src.FloorRate
	}
	if dst.PIKRate == nil {
		dst.PIKRate = src.PIKRate
	}
	if dst.Principal == nil {
		dst.Principal = src.Principal
	}
	if dst.Cost == nil {
		dst.Cost = src.Cost
	}
	if dst.FairValue == nil {
		dst.FairValue = src.FairValue
	}
	if dst.SharesOrUnits == nil {
		dst.SharesOrUnits = src.SharesOrUnits
	}
}
