package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
)

type CreateItemRequest struct {
	Code             string
	Name             string
	Description      string
	Unit             string
	UnitPriceExclTax decimal.Decimal
	// UnitPriceInclTax overrides the computed incl. tax price when set.
	UnitPriceInclTax decimal.NullDecimal
	VATRate          decimal.Decimal
	PricingModel     string
}

// UpdateItemRequest changes only the fields that are set. Changing the excl.
// price or VAT rate recomputes the incl. price unless one is given.
type UpdateItemRequest struct {
	ID               string
	Name             *string
	Description      *string
	Unit             *string
	UnitPriceExclTax decimal.NullDecimal
	UnitPriceInclTax decimal.NullDecimal
	VATRate          decimal.NullDecimal
	PricingModel     *string
	Active           *bool
}

type ListItemRequest struct {
	Name     string
	Active   *bool
	Model    string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

type ListItemResponse struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
}

type Service interface {
	Create(ctx context.Context, req CreateItemRequest) (Item, error)
	Update(ctx context.Context, req UpdateItemRequest) (Item, error)
	Get(ctx context.Context, id string) (Item, error)
	List(ctx context.Context, req ListItemRequest) (ListItemResponse, error)
	Archive(ctx context.Context, id string) (Item, error)
	// FindByIDs returns the org's items among ids, archived ones included.
	FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]Item, error)
	// Snapshot returns the org's active catalog for pricing.
	Snapshot(ctx context.Context) (pricing.CatalogMap, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidUnitPrice    = errors.New("invalid_unit_price")
	ErrInvalidVATRate      = errors.New("invalid_vat_rate")
	ErrInvalidPricingModel = errors.New("invalid_pricing_model")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateCode       = errors.New("duplicate_code")
)
