package quotefile

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "currency": "SEK",
  "tax_deduction": {"enabled": true, "percent": 30},
  "catalog": {
    "glass-4mm": {"name": "Float glass 4 mm", "unit_price_excl_tax": 1000, "vat_rate": 25, "pricing_model": "per_area"},
    "labor": {"name": "Installation", "unit_price_excl_tax": "500", "vat_rate": 25, "pricing_model": "per_duration"}
  },
  "lines": [
    {"catalog_item_id": "glass-4mm", "count": 2, "width_mm": 1000, "height_mm": 500},
    {"catalog_item_id": "labor", "count": 1, "duration_hours": 2.5},
    {"catalog_item_id": "gone", "count": 1}
  ]
}`

func TestParseAndQuote(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "SEK", f.Currency)
	assert.Equal(t, "Installation", f.ItemName("labor"))
	assert.Equal(t, "gone", f.ItemName("gone"))

	q, err := f.Quote()
	require.NoError(t, err)
	require.Len(t, q.Lines, 3)

	assert.True(t, q.Lines[0].TotalInclTax.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, pricing.PerDuration, q.Lines[1].Model)
	assert.True(t, q.Lines[1].TotalInclTax.Equal(decimal.RequireFromString("1562.5")))
	assert.Equal(t, []int{2}, q.SkippedLines())

	assert.True(t, q.Totals.TotalExclTax.Equal(decimal.NewFromInt(2250)))
	assert.True(t, q.Totals.TotalInclTax.Equal(decimal.RequireFromString("2812.5")))
	assert.True(t, q.Totals.DeductionAmount.Equal(decimal.RequireFromString("468.75")))
	assert.True(t, q.Totals.PayableAmount.Equal(decimal.RequireFromString("2343.75")))
}

func TestInclPriceOverride(t *testing.T) {
	f, err := Parse(strings.NewReader(`{
	  "catalog": {"x": {"unit_price_excl_tax": 99, "unit_price_incl_tax": 125, "vat_rate": 25, "pricing_model": "per_unit"}},
	  "lines": [{"catalog_item_id": "x", "count": 1}]
	}`))
	require.NoError(t, err)

	q, err := f.Quote()
	require.NoError(t, err)
	assert.True(t, q.Totals.TotalInclTax.Equal(decimal.NewFromInt(125)))
}

func TestPaddedIDsMatch(t *testing.T) {
	f, err := Parse(strings.NewReader(`{
	  "catalog": {" frame ": {"name": "Oak frame", "unit_price_excl_tax": 100, "vat_rate": 25, "pricing_model": "per_unit"}},
	  "lines": [{"catalog_item_id": "frame ", "count": 2}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Oak frame", f.ItemName(f.Lines[0].CatalogItemID))
	assert.Equal(t, "Oak frame", f.ItemName("frame"))

	q, err := f.Quote()
	require.NoError(t, err)
	assert.Empty(t, q.SkippedLines())
	assert.True(t, q.Totals.TotalInclTax.Equal(decimal.NewFromInt(250)))
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "no lines", body: `{"lines": []}`, want: ErrEmptyLines},
		{name: "zero count", body: `{"lines": [{"catalog_item_id": "x", "count": 0}]}`, want: ErrInvalidCount},
		{name: "discount above 100", body: `{"lines": [{"catalog_item_id": "x", "count": 1, "discount_percent": 120}]}`, want: ErrInvalidDiscount},
		{name: "unknown model", body: `{"catalog": {"x": {"pricing_model": "per_weight"}}, "lines": [{"catalog_item_id": "x", "count": 1}]}`, want: pricing.ErrUnknownModel},
		{name: "negative price", body: `{"catalog": {"x": {"unit_price_excl_tax": -1, "pricing_model": "per_unit"}}, "lines": [{"catalog_item_id": "x", "count": 1}]}`, want: ErrInvalidCatalog},
		{name: "ids equal once trimmed", body: `{"catalog": {"x": {"unit_price_excl_tax": 10, "pricing_model": "per_unit"}, " x ": {"unit_price_excl_tax": 20, "pricing_model": "per_unit"}}, "lines": [{"catalog_item_id": "x", "count": 1}]}`, want: ErrInvalidCatalog},
		{name: "blank id", body: `{"catalog": {"  ": {"unit_price_excl_tax": 10, "pricing_model": "per_unit"}}, "lines": [{"catalog_item_id": "x", "count": 1}]}`, want: ErrInvalidCatalog},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := Parse(strings.NewReader(`{"lines": [], "extra": true}`))
	assert.Error(t, err)
}
