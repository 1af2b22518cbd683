package pricing

import "github.com/shopspring/decimal"

// Snapshot is the copy of a catalog item's pricing fields frozen onto an order
// line when the order is saved. Later catalog edits never change it.
type Snapshot struct {
	UnitPriceExclTax decimal.Decimal `json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.Decimal `json:"unit_price_incl_tax"`
	VATRate          decimal.Decimal `json:"vat_rate"`
	Model            Model           `json:"pricing_model"`
}

func SnapshotOf(item CatalogItem) Snapshot {
	return Snapshot{
		UnitPriceExclTax: item.UnitPriceExclTax,
		UnitPriceInclTax: item.UnitPriceInclTax,
		VATRate:          item.VATRate,
		Model:            item.Model,
	}
}

func (s Snapshot) Item() CatalogItem {
	return CatalogItem{
		UnitPriceExclTax: s.UnitPriceExclTax,
		UnitPriceInclTax: s.UnitPriceInclTax,
		VATRate:          s.VATRate,
		Model:            s.Model,
	}
}

// SnapshotCatalog serves snapshots as a Catalog, keyed by line reference.
type SnapshotCatalog map[string]Snapshot

func (c SnapshotCatalog) Lookup(id string) (CatalogItem, bool) {
	s, ok := c[id]
	if !ok {
		return CatalogItem{}, false
	}
	return s.Item(), true
}
