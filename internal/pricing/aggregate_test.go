package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rot(pct string) Deduction {
	return Deduction{Enabled: true, Percent: nd(pct)}
}

func TestAggregateLaborDeduction(t *testing.T) {
	catalog := CatalogMap{
		"labor": NewCatalogItem(d("600"), d("25"), PerDuration),
		"pane":  glassPane(),
	}
	lines := []Line{
		{CatalogItemID: "labor", Count: 1, DurationHours: nd("2")},
		{CatalogItemID: "pane", Count: 1, WidthMM: nd("600"), HeightMM: nd("800")},
	}

	q := Price(lines, catalog, rot("30"))

	assert.True(t, q.Totals.HasLaborLines)
	assertDecimal(t, "1440", q.Totals.TotalExclTax)
	assertDecimal(t, "1800", q.Totals.TotalInclTax)
	assertDecimal(t, "1200", q.Totals.LaborTotalExclTax)
	assertDecimal(t, "1500", q.Totals.LaborTotalInclTax)
	assertDecimal(t, "450", q.Totals.DeductionAmount)
	assertDecimal(t, "1350", q.Totals.PayableAmount)
}

func TestAggregateNoLaborLines(t *testing.T) {
	catalog := CatalogMap{"mirror": NewCatalogItem(d("240"), d("25"), PerUnit)}
	lines := []Line{{CatalogItemID: "mirror", Count: 1}}

	q := Price(lines, catalog, rot("30"))

	assertDecimal(t, "300", q.Totals.TotalInclTax)
	assert.False(t, q.Totals.HasLaborLines)
	assert.True(t, q.Totals.DeductionAmount.IsZero())
	assertDecimal(t, "300", q.Totals.PayableAmount)
	assert.True(t, q.DeductionWithoutLabor(rot("30")))
}

func TestAggregateDeductionConditions(t *testing.T) {
	labor := PricedLine{Model: PerDuration, TotalExclTax: d("800"), TotalInclTax: d("1000")}
	free := PricedLine{Model: PerDuration, TotalExclTax: decimal.Zero, TotalInclTax: decimal.Zero}

	tests := []struct {
		name      string
		lines     []PricedLine
		deduction Deduction
		want      string
	}{
		{"disabled", []PricedLine{labor}, Deduction{Percent: nd("30")}, "0"},
		{"enabled without percent", []PricedLine{labor}, Deduction{Enabled: true}, "0"},
		{"disabled without percent", []PricedLine{labor}, Deduction{}, "0"},
		{"zero labor total", []PricedLine{free}, rot("30"), "0"},
		{"enabled", []PricedLine{labor}, rot("30"), "300"},
		{"fractional percent", []PricedLine{labor}, rot("12.5"), "125"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.lines, tt.deduction)
			assertDecimal(t, tt.want, got.DeductionAmount)
			assertDecimal(t, got.TotalInclTax.Sub(got.DeductionAmount).String(), got.PayableAmount)
		})
	}
}

func TestAggregateIsAdditive(t *testing.T) {
	catalog := CatalogMap{
		"a": NewCatalogItem(d("99.90"), d("25"), PerUnit),
		"b": NewCatalogItem(d("1200"), d("25"), PerArea),
		"c": NewCatalogItem(d("45"), d("12"), PerLength),
		"d": NewCatalogItem(d("650"), d("25"), PerDuration),
	}
	lines := []Line{
		{CatalogItemID: "a", Count: 7, DiscountPercent: nd("5")},
		{CatalogItemID: "b", Count: 2, WidthMM: nd("1187"), HeightMM: nd("2013")},
		{CatalogItemID: "c", Count: 1, LengthMM: nd("3333")},
		{CatalogItemID: "d", Count: 2, DurationHours: nd("1.75"), DiscountPercent: nd("20")},
	}

	q := Price(lines, catalog, Deduction{})

	sumExcl, sumIncl := decimal.Zero, decimal.Zero
	for _, l := range lines {
		item, ok := catalog.Lookup(l.CatalogItemID)
		require.True(t, ok)
		p := PriceLine(l, item)
		sumExcl = sumExcl.Add(p.TotalExclTax)
		sumIncl = sumIncl.Add(p.TotalInclTax)
	}
	assertDecimal(t, sumExcl.String(), q.Totals.TotalExclTax)
	assertDecimal(t, sumIncl.String(), q.Totals.TotalInclTax)
	assertDecimal(t, sumIncl.String(), q.Totals.PayableAmount)
}

func TestAggregateIgnoresMissingCatalogItem(t *testing.T) {
	catalog := CatalogMap{
		"pane":  glassPane(),
		"labor": NewCatalogItem(d("600"), d("25"), PerDuration),
	}
	lines := []Line{
		{CatalogItemID: "pane", Count: 1, WidthMM: nd("600"), HeightMM: nd("800")},
		{CatalogItemID: "removed", Count: 3, DurationHours: nd("4")},
		{CatalogItemID: "labor", Count: 1, DurationHours: nd("2")},
	}

	q := Price(lines, catalog, Deduction{})

	assertDecimal(t, "1440", q.Totals.TotalExclTax)
	assertDecimal(t, "1800", q.Totals.TotalInclTax)
	assert.Equal(t, []int{1}, q.SkippedLines())
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil, rot("30"))
	assert.True(t, got.TotalInclTax.IsZero())
	assert.True(t, got.PayableAmount.IsZero())
	assert.False(t, got.HasLaborLines)
}

func TestSnapshotRoundTripKeepsPricing(t *testing.T) {
	item := NewCatalogItem(d("600"), d("25"), PerDuration)
	snap := SnapshotOf(item)

	// the catalog changes after the order was saved
	item.UnitPriceExclTax = d("900")
	item.UnitPriceInclTax = d("1125")

	line := Line{CatalogItemID: "line-1", Count: 1, DurationHours: nd("2")}
	q := Price([]Line{line}, SnapshotCatalog{"line-1": snap}, rot("30"))

	assertDecimal(t, "1500", q.Totals.TotalInclTax)
	assertDecimal(t, "450", q.Totals.DeductionAmount)
	assert.Equal(t, PerDuration, snap.Item().Model)
}
