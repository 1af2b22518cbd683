package pricing

import "github.com/shopspring/decimal"

// Deduction is the order-level labor tax deduction setting. Percent is not
// range checked here; callers validate it before persisting.
type Deduction struct {
	Enabled bool
	Percent decimal.NullDecimal
}

// Totals are the unrounded order totals.
type Totals struct {
	TotalExclTax      decimal.Decimal `json:"total_excl_tax"`
	TotalInclTax      decimal.Decimal `json:"total_incl_tax"`
	LaborTotalExclTax decimal.Decimal `json:"labor_total_excl_tax"`
	LaborTotalInclTax decimal.Decimal `json:"labor_total_incl_tax"`
	HasLaborLines     bool            `json:"has_labor_lines"`
	DeductionAmount   decimal.Decimal `json:"tax_deduction_amount"`
	PayableAmount     decimal.Decimal `json:"payable_amount"`
}

// Aggregate sums priced lines into order totals and applies the labor
// deduction. Only PerDuration lines count as labor.
func Aggregate(lines []PricedLine, d Deduction) Totals {
	t := Totals{
		TotalExclTax:      decimal.Zero,
		TotalInclTax:      decimal.Zero,
		LaborTotalExclTax: decimal.Zero,
		LaborTotalInclTax: decimal.Zero,
		DeductionAmount:   decimal.Zero,
	}

	for _, l := range lines {
		if l.Skipped {
			continue
		}
		t.TotalExclTax = t.TotalExclTax.Add(l.TotalExclTax)
		t.TotalInclTax = t.TotalInclTax.Add(l.TotalInclTax)
		if l.Model.IsLabor() {
			t.HasLaborLines = true
			t.LaborTotalExclTax = t.LaborTotalExclTax.Add(l.TotalExclTax)
			t.LaborTotalInclTax = t.LaborTotalInclTax.Add(l.TotalInclTax)
		}
	}

	if d.Enabled && d.Percent.Valid && t.LaborTotalInclTax.IsPositive() {
		t.DeductionAmount = t.LaborTotalInclTax.Mul(percent(d.Percent.Decimal))
	}
	t.PayableAmount = t.TotalInclTax.Sub(t.DeductionAmount)
	return t
}

// Quote is a fully priced order.
type Quote struct {
	Lines  []PricedLine `json:"lines"`
	Totals Totals       `json:"totals"`
}

// SkippedLines returns the indexes of lines that were not priced.
func (q Quote) SkippedLines() []int {
	var idx []int
	for i, l := range q.Lines {
		if l.Skipped {
			idx = append(idx, i)
		}
	}
	return idx
}

// DeductionWithoutLabor reports an enabled deduction that has nothing to
// apply to.
func (q Quote) DeductionWithoutLabor(d Deduction) bool {
	return d.Enabled && !q.Totals.HasLaborLines
}

// Price prices lines against catalog and aggregates the result.
func Price(lines []Line, catalog Catalog, d Deduction) Quote {
	priced := PriceLines(lines, catalog)
	return Quote{
		Lines:  priced,
		Totals: Aggregate(priced, d),
	}
}
