package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
)

// Item is a priceable product or service. UnitPriceInclTax is computed when
// the item is written and stored next to the excl. tax price.
type Item struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID    `gorm:"not null;uniqueIndex:ux_catalog_items_org_code,priority:1" json:"organization_id"`
	Code             string          `gorm:"not null;uniqueIndex:ux_catalog_items_org_code,priority:2" json:"code"`
	Name             string          `gorm:"not null" json:"name"`
	Description      string          `json:"description,omitempty"`
	Unit             string          `json:"unit,omitempty"`
	UnitPriceExclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price_incl_tax"`
	VATRate          decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"vat_rate"`
	PricingModel     pricing.Model   `gorm:"type:varchar(32);not null" json:"pricing_model"`
	Active           bool            `gorm:"not null" json:"active"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "catalog_items" }

// PricingItem returns the fields the pricing engine reads.
func (i Item) PricingItem() pricing.CatalogItem {
	return pricing.CatalogItem{
		UnitPriceExclTax: i.UnitPriceExclTax,
		UnitPriceInclTax: i.UnitPriceInclTax,
		VATRate:          i.VATRate,
		Model:            i.PricingModel,
	}
}

// DefaultUnit is the display label for each pricing model.
func DefaultUnit(m pricing.Model) string {
	switch m {
	case pricing.PerLength:
		return "m"
	case pricing.PerArea:
		return "m²"
	case pricing.PerDuration:
		return "h"
	default:
		return "st"
	}
}
