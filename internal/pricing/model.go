// Package pricing turns work-order lines into line prices, order totals and
// the labor tax deduction (ROT).
//
// Everything in this package is a pure function of its inputs. Callers load
// catalog data up front and may invoke the engine concurrently.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Model is the unit of measure a catalog item is priced by.
type Model string

const (
	PerUnit     Model = "per_unit"
	PerLength   Model = "per_length"
	PerArea     Model = "per_area"
	PerDuration Model = "per_duration"
)

var ErrUnknownModel = errors.New("invalid_pricing_model")

var one = decimal.NewFromInt(1)

// percent converts a percentage (25 for 25%) into a fraction.
func percent(p decimal.Decimal) decimal.Decimal {
	return p.Shift(-2)
}

// ParseModel normalizes raw input into a Model.
func ParseModel(raw string) (Model, error) {
	m := Model(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", ErrUnknownModel
	}
	return m, nil
}

func (m Model) Valid() bool {
	switch m {
	case PerUnit, PerLength, PerArea, PerDuration:
		return true
	default:
		return false
	}
}

// IsLabor reports whether lines priced by m count towards the tax deduction.
func (m Model) IsLabor() bool {
	return m == PerDuration
}

func (m Model) String() string { return string(m) }

// CatalogItem is the pricing-relevant part of a catalog entry.
//
// UnitPriceInclTax is stored alongside the excl. tax price instead of being
// derived per line, so excl. and incl. totals never drift through double
// rounding.
type CatalogItem struct {
	UnitPriceExclTax decimal.Decimal
	UnitPriceInclTax decimal.Decimal
	VATRate          decimal.Decimal
	Model            Model
}

var (
	ErrNegativeUnitPrice = errors.New("invalid_unit_price")
	ErrNegativeVATRate   = errors.New("invalid_vat_rate")
)

// NewCatalogItem builds a CatalogItem and precomputes its incl. tax unit price.
func NewCatalogItem(unitPriceExclTax, vatRate decimal.Decimal, model Model) CatalogItem {
	return CatalogItem{
		UnitPriceExclTax: unitPriceExclTax,
		UnitPriceInclTax: InclTax(unitPriceExclTax, vatRate),
		VATRate:          vatRate,
		Model:            model,
	}
}

// InclTax returns amount * (1 + vatRate/100).
func InclTax(amount, vatRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(one.Add(percent(vatRate)))
}

func (c CatalogItem) Validate() error {
	if c.UnitPriceExclTax.IsNegative() || c.UnitPriceInclTax.IsNegative() {
		return ErrNegativeUnitPrice
	}
	if c.VATRate.IsNegative() {
		return ErrNegativeVATRate
	}
	if !c.Model.Valid() {
		return ErrUnknownModel
	}
	return nil
}

// Catalog resolves catalog items by identifier.
type Catalog interface {
	Lookup(id string) (CatalogItem, bool)
}

// CatalogMap is an in-memory Catalog keyed by item identifier.
type CatalogMap map[string]CatalogItem

func (c CatalogMap) Lookup(id string) (CatalogItem, bool) {
	item, ok := c[id]
	return item, ok
}
