package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusDraft, StatusScheduled, true},
		{StatusDraft, StatusCompleted, false},
		{StatusScheduled, StatusDraft, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusDraft, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.True(t, StatusCompleted.Final())
	assert.False(t, StatusScheduled.Final())
	assert.False(t, Status("done").Valid())
}

func TestQuoteLinesUsesPerLineSnapshots(t *testing.T) {
	item := snowflake.ID(7)
	old := pricing.SnapshotOf(pricing.NewCatalogItem(decimal.NewFromInt(500), decimal.NewFromInt(25), pricing.PerDuration))
	current := pricing.SnapshotOf(pricing.NewCatalogItem(decimal.NewFromInt(600), decimal.NewFromInt(25), pricing.PerDuration))

	lines := []Line{
		{CatalogItemID: item, Count: 1, DurationHours: decimal.NewNullDecimal(decimal.NewFromInt(2))},
		{CatalogItemID: item, Count: 1, DurationHours: decimal.NewNullDecimal(decimal.NewFromInt(1))},
	}
	lines[0].ApplySnapshot(old)
	lines[1].ApplySnapshot(current)

	quote := QuoteLines(lines, pricing.Deduction{Enabled: true, Percent: decimal.NewNullDecimal(decimal.NewFromInt(30))})
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, "7", quote.Lines[0].CatalogItemID)
	assert.True(t, quote.Lines[0].TotalInclTax.Equal(decimal.NewFromInt(1250)))
	assert.True(t, quote.Lines[1].TotalInclTax.Equal(decimal.NewFromInt(750)))
	assert.True(t, quote.Totals.DeductionAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, quote.Totals.PayableAmount.Equal(decimal.NewFromInt(1400)))
}

func TestStoredQuoteKeepsPersistedTotals(t *testing.T) {
	order := WorkOrder{
		TaxDeductionEnabled: true,
		TaxDeductionPercent: decimal.NewNullDecimal(decimal.NewFromInt(30)),
		Lines: []Line{
			{CatalogItemID: 7, Count: 1, DurationHours: decimal.NewNullDecimal(decimal.NewFromInt(2))},
		},
	}
	order.Lines[0].ApplySnapshot(pricing.SnapshotOf(pricing.NewCatalogItem(decimal.NewFromInt(500), decimal.NewFromInt(25), pricing.PerDuration)))

	fresh := order.Reprice()
	assert.True(t, order.TotalInclTax.Equal(decimal.NewFromInt(1250)))
	assert.True(t, order.Lines[0].LineTotalInclTax.Equal(fresh.Lines[0].TotalInclTax))

	order.Lines[0].LineTotalExclTax = decimal.RequireFromString("1001")
	order.Lines[0].LineTotalInclTax = decimal.RequireFromString("1251.25")
	order.TotalExclTax = decimal.RequireFromString("1001")
	order.TotalInclTax = decimal.RequireFromString("1251.25")

	stored := order.StoredQuote()
	require.Len(t, stored.Lines, 1)
	assert.True(t, stored.Lines[0].TotalInclTax.Equal(decimal.RequireFromString("1251.25")))
	assert.True(t, stored.Lines[0].MeasuredQuantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, stored.Totals.TotalInclTax.Equal(decimal.RequireFromString("1251.25")))
	assert.True(t, stored.Totals.LaborTotalInclTax.Equal(decimal.RequireFromString("1251.25")))
	assert.True(t, stored.Totals.DeductionAmount.Equal(decimal.RequireFromString("375.375")))
	assert.True(t, stored.Totals.PayableAmount.Equal(decimal.RequireFromString("875.875")))
	assert.True(t, order.Quote().Totals.TotalInclTax.Equal(decimal.NewFromInt(1250)))
}
