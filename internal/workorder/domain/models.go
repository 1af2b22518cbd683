package domain

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Final reports whether the order can no longer be edited.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusDraft:      {StatusScheduled, StatusInProgress, StatusCancelled},
	StatusScheduled:  {StatusDraft, StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type WorkOrder struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;uniqueIndex:ux_work_orders_org_number,priority:1" json:"organization_id"`
	Number     string       `gorm:"not null;uniqueIndex:ux_work_orders_org_number,priority:2" json:"number"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Title      string       `json:"title"`
	Status     Status       `gorm:"type:varchar(32);not null" json:"status"`

	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	Address        string     `json:"address,omitempty"`
	Notes          string     `json:"notes,omitempty"`

	TaxDeductionEnabled bool                `gorm:"not null" json:"tax_deduction_enabled"`
	TaxDeductionPercent decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"tax_deduction_percent"`

	TotalExclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total_excl_tax"`
	TotalInclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total_incl_tax"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Lines []Line `gorm:"foreignKey:WorkOrderID" json:"lines"`
}

func (WorkOrder) TableName() string { return "work_orders" }

func (w WorkOrder) Deduction() pricing.Deduction {
	return pricing.Deduction{
		Enabled: w.TaxDeductionEnabled,
		Percent: w.TaxDeductionPercent,
	}
}

// Quote reprices the order from the snapshots stored on its lines. The live
// catalog is never consulted.
func (w WorkOrder) Quote() pricing.Quote {
	return QuoteLines(w.Lines, w.Deduction())
}

// Reprice prices the order from its line snapshots and writes the line and
// order totals that get persisted.
func (w *WorkOrder) Reprice() pricing.Quote {
	quote := w.Quote()
	for i := range w.Lines {
		w.Lines[i].LineTotalExclTax = quote.Lines[i].TotalExclTax
		w.Lines[i].LineTotalInclTax = quote.Lines[i].TotalInclTax
	}
	w.TotalExclTax = quote.Totals.TotalExclTax
	w.TotalInclTax = quote.Totals.TotalInclTax
	return quote
}

// StoredQuote reads the totals persisted with the order instead of pricing
// it again. Only the labor partition and the deduction are derived, from the
// stored line totals.
func (w WorkOrder) StoredQuote() pricing.Quote {
	lines := make([]pricing.PricedLine, 0, len(w.Lines))
	for _, l := range w.Lines {
		lines = append(lines, pricing.PricedLine{
			CatalogItemID:    l.CatalogItemID.String(),
			Model:            l.PricingModel,
			MeasuredQuantity: l.PricingLine("").Measure(l.PricingModel).Quantity(),
			TotalExclTax:     l.LineTotalExclTax,
			TotalInclTax:     l.LineTotalInclTax,
		})
	}

	totals := pricing.Aggregate(lines, w.Deduction())
	totals.TotalExclTax = w.TotalExclTax
	totals.TotalInclTax = w.TotalInclTax
	totals.PayableAmount = w.TotalInclTax.Sub(totals.DeductionAmount)
	return pricing.Quote{Lines: lines, Totals: totals}
}

// Line is one persisted order line. The unit price, VAT rate and pricing
// model are a copy of the catalog item taken when the line was last priced.
type Line struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkOrderID   snowflake.ID `gorm:"not null;index" json:"work_order_id"`
	Position      int          `gorm:"not null" json:"position"`
	CatalogItemID snowflake.ID `gorm:"not null" json:"catalog_item_id"`
	Description   string       `json:"description"`
	Count         int          `gorm:"not null" json:"count"`

	DiscountPercent decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"discount_percent"`
	WidthMM         decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"width_mm"`
	HeightMM        decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"height_mm"`
	LengthMM        decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"length_mm"`
	DurationHours   decimal.NullDecimal `gorm:"type:numeric(8,2)" json:"duration_hours"`
	Comment         string              `json:"comment,omitempty"`

	UnitPriceExclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price_incl_tax"`
	VATRate          decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"vat_rate"`
	PricingModel     pricing.Model   `gorm:"type:varchar(32);not null" json:"pricing_model"`

	LineTotalExclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"line_total_excl_tax"`
	LineTotalInclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"line_total_incl_tax"`
}

func (Line) TableName() string { return "work_order_lines" }

func (l Line) Snapshot() pricing.Snapshot {
	return pricing.Snapshot{
		UnitPriceExclTax: l.UnitPriceExclTax,
		UnitPriceInclTax: l.UnitPriceInclTax,
		VATRate:          l.VATRate,
		Model:            l.PricingModel,
	}
}

func (l *Line) ApplySnapshot(s pricing.Snapshot) {
	l.UnitPriceExclTax = s.UnitPriceExclTax
	l.UnitPriceInclTax = s.UnitPriceInclTax
	l.VATRate = s.VATRate
	l.PricingModel = s.Model
}

// PricingLine is the engine input for l, referenced by ref.
func (l Line) PricingLine(ref string) pricing.Line {
	return pricing.Line{
		CatalogItemID:   ref,
		Count:           l.Count,
		DiscountPercent: l.DiscountPercent,
		WidthMM:         l.WidthMM,
		HeightMM:        l.HeightMM,
		LengthMM:        l.LengthMM,
		DurationHours:   l.DurationHours,
	}
}

// QuoteLines prices lines against their own snapshots. Two lines for the same
// catalog item may carry different snapshots, so each line is looked up by
// its index.
func QuoteLines(lines []Line, d pricing.Deduction) pricing.Quote {
	catalog := make(pricing.SnapshotCatalog, len(lines))
	input := make([]pricing.Line, 0, len(lines))
	for i, l := range lines {
		ref := strconv.Itoa(i)
		catalog[ref] = l.Snapshot()
		input = append(input, l.PricingLine(ref))
	}

	quote := pricing.Price(input, catalog, d)
	for i := range quote.Lines {
		quote.Lines[i].CatalogItemID = lines[i].CatalogItemID.String()
	}
	return quote
}
