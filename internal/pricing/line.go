package pricing

import "github.com/shopspring/decimal"

// Line is the raw input of one order line. Which dimension fields are read
// depends on the pricing model of the referenced catalog item.
type Line struct {
	CatalogItemID   string
	Count           int
	DiscountPercent decimal.NullDecimal
	WidthMM         decimal.NullDecimal
	HeightMM        decimal.NullDecimal
	LengthMM        decimal.NullDecimal
	DurationHours   decimal.NullDecimal
}

// Measure projects the raw dimension fields onto the variant model requires.
// Unknown models are priced per unit.
func (l Line) Measure(model Model) Measure {
	switch model {
	case PerLength:
		return LengthMeasure{LengthMM: l.LengthMM}
	case PerArea:
		return AreaMeasure{WidthMM: l.WidthMM, HeightMM: l.HeightMM}
	case PerDuration:
		return DurationMeasure{Hours: l.DurationHours}
	default:
		return UnitMeasure{}
	}
}

// DiscountFactor returns 1 - discount/100. A missing discount is 0%.
func (l Line) DiscountFactor() decimal.Decimal {
	if !l.DiscountPercent.Valid {
		return one
	}
	return one.Sub(percent(l.DiscountPercent.Decimal))
}

// PricedLine is the result of pricing one Line. Totals are unrounded.
type PricedLine struct {
	CatalogItemID    string          `json:"catalog_item_id"`
	Model            Model           `json:"pricing_model,omitempty"`
	MeasuredQuantity decimal.Decimal `json:"measured_quantity"`
	TotalExclTax     decimal.Decimal `json:"line_total_excl_tax"`
	TotalInclTax     decimal.Decimal `json:"line_total_incl_tax"`
	// Skipped is set when the catalog item could not be resolved; the line
	// then contributes zero to every total.
	Skipped bool `json:"skipped,omitempty"`
}

// PriceLine prices line against item.
func PriceLine(line Line, item CatalogItem) PricedLine {
	qty := line.Measure(item.Model).Quantity()
	base := decimal.NewFromInt(int64(line.Count)).Mul(qty).Mul(line.DiscountFactor())

	return PricedLine{
		CatalogItemID:    line.CatalogItemID,
		Model:            item.Model,
		MeasuredQuantity: qty,
		TotalExclTax:     item.UnitPriceExclTax.Mul(base),
		TotalInclTax:     item.UnitPriceInclTax.Mul(base),
	}
}

// PriceLines prices every line against catalog. Lines whose catalog item is
// missing are returned as skipped instead of failing the whole order.
func PriceLines(lines []Line, catalog Catalog) []PricedLine {
	out := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		item, ok := lookup(catalog, line.CatalogItemID)
		if !ok {
			out = append(out, skippedLine(line))
			continue
		}
		out = append(out, PriceLine(line, item))
	}
	return out
}

func lookup(catalog Catalog, id string) (CatalogItem, bool) {
	if catalog == nil || id == "" {
		return CatalogItem{}, false
	}
	return catalog.Lookup(id)
}

func skippedLine(line Line) PricedLine {
	return PricedLine{
		CatalogItemID:    line.CatalogItemID,
		MeasuredQuantity: decimal.Zero,
		TotalExclTax:     decimal.Zero,
		TotalInclTax:     decimal.Zero,
		Skipped:          true,
	}
}
