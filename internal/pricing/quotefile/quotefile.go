// Package quotefile reads self-contained order files that carry their own
// catalog, so an order can be priced without a database.
package quotefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
)

var (
	ErrEmptyLines      = errors.New("empty_lines")
	ErrInvalidCount    = errors.New("invalid_count")
	ErrInvalidCatalog  = errors.New("invalid_catalog_item")
	ErrInvalidDiscount = errors.New("invalid_discount_percent")
)

type Item struct {
	Name             string              `json:"name"`
	UnitPriceExclTax decimal.Decimal     `json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.NullDecimal `json:"unit_price_incl_tax"`
	VATRate          decimal.Decimal     `json:"vat_rate"`
	PricingModel     string              `json:"pricing_model"`
}

type Line struct {
	CatalogItemID   string              `json:"catalog_item_id"`
	Count           int                 `json:"count"`
	DiscountPercent decimal.NullDecimal `json:"discount_percent"`
	WidthMM         decimal.NullDecimal `json:"width_mm"`
	HeightMM        decimal.NullDecimal `json:"height_mm"`
	LengthMM        decimal.NullDecimal `json:"length_mm"`
	DurationHours   decimal.NullDecimal `json:"duration_hours"`
}

type TaxDeduction struct {
	Enabled bool                `json:"enabled"`
	Percent decimal.NullDecimal `json:"percent"`
}

type File struct {
	Currency     string          `json:"currency"`
	TaxDeduction TaxDeduction    `json:"tax_deduction"`
	Catalog      map[string]Item `json:"catalog"`
	Lines        []Line          `json:"lines"`
}

// Parse decodes and validates an order file. Lines referencing items missing
// from the file's catalog are kept; the engine prices them as skipped.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode quote file: %w", err)
	}

	if len(f.Lines) == 0 {
		return File{}, ErrEmptyLines
	}
	hundred := decimal.NewFromInt(100)
	for i, l := range f.Lines {
		if l.Count < 1 {
			return File{}, fmt.Errorf("line %d: %w", i+1, ErrInvalidCount)
		}
		if l.DiscountPercent.Valid && (l.DiscountPercent.Decimal.IsNegative() || l.DiscountPercent.Decimal.GreaterThan(hundred)) {
			return File{}, fmt.Errorf("line %d: %w", i+1, ErrInvalidDiscount)
		}
	}
	if _, err := f.PricingCatalog(); err != nil {
		return File{}, err
	}
	return f, nil
}

// PricingCatalog converts the embedded catalog for the engine.
func (f File) PricingCatalog() (pricing.CatalogMap, error) {
	out := make(pricing.CatalogMap, len(f.Catalog))
	for id, item := range f.Catalog {
		key := strings.TrimSpace(id)
		if key == "" {
			return nil, fmt.Errorf("catalog item %q: %w", id, ErrInvalidCatalog)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("catalog item %q: duplicate of %q: %w", id, key, ErrInvalidCatalog)
		}
		model, err := pricing.ParseModel(item.PricingModel)
		if err != nil {
			return nil, fmt.Errorf("catalog item %q: %w", id, err)
		}
		ci := pricing.NewCatalogItem(item.UnitPriceExclTax, item.VATRate, model)
		if item.UnitPriceInclTax.Valid {
			ci.UnitPriceInclTax = item.UnitPriceInclTax.Decimal
		}
		if err := ci.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %q: %w", id, errors.Join(ErrInvalidCatalog, err))
		}
		out[key] = ci
	}
	return out, nil
}

func (f File) Deduction() pricing.Deduction {
	return pricing.Deduction{
		Enabled: f.TaxDeduction.Enabled,
		Percent: f.TaxDeduction.Percent,
	}
}

func (f File) Quote() (pricing.Quote, error) {
	catalog, err := f.PricingCatalog()
	if err != nil {
		return pricing.Quote{}, err
	}

	lines := make([]pricing.Line, 0, len(f.Lines))
	for _, l := range f.Lines {
		lines = append(lines, pricing.Line{
			CatalogItemID:   strings.TrimSpace(l.CatalogItemID),
			Count:           l.Count,
			DiscountPercent: l.DiscountPercent,
			WidthMM:         l.WidthMM,
			HeightMM:        l.HeightMM,
			LengthMM:        l.LengthMM,
			DurationHours:   l.DurationHours,
		})
	}
	return pricing.Price(lines, catalog, f.Deduction()), nil
}

// ItemName returns the display name of a catalog entry, or its id. Ids match
// the way lines are priced, ignoring surrounding whitespace.
func (f File) ItemName(id string) string {
	id = strings.TrimSpace(id)
	for key, item := range f.Catalog {
		if strings.TrimSpace(key) == id && item.Name != "" {
			return item.Name
		}
	}
	return id
}
