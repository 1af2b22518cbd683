package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
)

// LineInput is one order line as entered in the form.
type LineInput struct {
	// ID references an existing line on update; empty for new lines.
	ID              string
	CatalogItemID   string
	Count           int
	DiscountPercent decimal.NullDecimal
	WidthMM         decimal.NullDecimal
	HeightMM        decimal.NullDecimal
	LengthMM        decimal.NullDecimal
	DurationHours   decimal.NullDecimal
	Comment         string
	// Reprice takes a fresh catalog snapshot even if the item is unchanged.
	Reprice bool
}

type WorkOrderInput struct {
	CustomerID          string
	Title               string
	ScheduledStart      *time.Time
	ScheduledEnd        *time.Time
	Address             string
	Notes               string
	TaxDeductionEnabled bool
	TaxDeductionPercent decimal.NullDecimal
	// CatalogSnapshotID prices new and repriced lines from a pinned catalog
	// snapshot instead of the live catalog.
	CatalogSnapshotID string
	Lines             []LineInput
}

type CreateWorkOrderRequest struct {
	WorkOrderInput
}

type UpdateWorkOrderRequest struct {
	ID string
	WorkOrderInput
}

type UpdateStatusRequest struct {
	ID     string
	Status string
}

type ListWorkOrderRequest struct {
	pagination.Pagination
	Status        string
	CustomerID    string
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

type WorkOrderCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListWorkOrderFilter struct {
	Status        Status
	CustomerID    snowflake.ID
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Cursor        *WorkOrderCursor
	Limit         int
}

type ListWorkOrderResponse struct {
	pagination.PageInfo
	WorkOrders []WorkOrder `json:"work_orders"`
}

// Summary is the priced view of a persisted order.
type Summary struct {
	WorkOrderID    snowflake.ID         `json:"work_order_id"`
	Number         string               `json:"number"`
	Currency       string               `json:"currency"`
	DeductionLabel string               `json:"tax_deduction_label"`
	Lines          []pricing.PricedLine `json:"lines"`
	Totals         pricing.Totals       `json:"totals"`
}

type PreviewRequest struct {
	// CatalogSnapshotID pins pricing to a frozen catalog; empty means live.
	CatalogSnapshotID   string
	TaxDeductionEnabled bool
	TaxDeductionPercent decimal.NullDecimal
	Lines               []LineInput
}

const (
	WarningDeductionWithoutLabor = "tax_deduction_without_labor"
	WarningUnknownCatalogItem    = "unknown_catalog_item"
	WarningDeductionPercent      = "invalid_tax_deduction_percent"
)

type Warning struct {
	Code string `json:"code"`
	Line *int   `json:"line,omitempty"`
}

type PreviewResponse struct {
	CatalogSnapshotID string               `json:"catalog_snapshot_id,omitempty"`
	Lines             []pricing.PricedLine `json:"lines"`
	Totals            pricing.Totals       `json:"totals"`
	Warnings          []Warning            `json:"warnings"`
}

type Service interface {
	Create(ctx context.Context, req CreateWorkOrderRequest) (WorkOrder, error)
	Update(ctx context.Context, req UpdateWorkOrderRequest) (WorkOrder, error)
	Get(ctx context.Context, id string) (WorkOrder, error)
	List(ctx context.Context, req ListWorkOrderRequest) (ListWorkOrderResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (WorkOrder, error)
	Summary(ctx context.Context, id string) (Summary, error)
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
}

var (
	ErrInvalidOrganization        = errors.New("invalid_organization")
	ErrInvalidID                  = errors.New("invalid_id")
	ErrNotFound                   = errors.New("not_found")
	ErrInvalidCustomer            = errors.New("invalid_customer")
	ErrInvalidCatalogItem         = errors.New("invalid_catalog_item")
	ErrInvalidCount               = errors.New("invalid_count")
	ErrInvalidDiscountPercent     = errors.New("invalid_discount_percent")
	ErrInvalidTaxDeductionPercent = errors.New("invalid_tax_deduction_percent")
	ErrInvalidStatus              = errors.New("invalid_status")
	ErrInvalidSchedule            = errors.New("invalid_schedule")
	ErrInvalidPageToken           = errors.New("invalid_page_token")
	ErrEmptyLines                 = errors.New("empty_lines")
	ErrInvalidTransition          = errors.New("invalid_status_transition")
	ErrLocked                     = errors.New("work_order_locked")
	ErrInvalidCatalogSnapshot     = errors.New("invalid_catalog_snapshot")
	ErrInvalidLineID              = errors.New("invalid_line_id")
	ErrInvalidMeasure             = errors.New("invalid_measure")
)
