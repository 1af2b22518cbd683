package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	workorderdomain "github.com/smallbiznis/glazier/internal/workorder/domain"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
)

type workOrderLineRequest struct {
	ID              string              `json:"id"`
	CatalogItemID   string              `json:"catalog_item_id"`
	Count           int                 `json:"count"`
	DiscountPercent decimal.NullDecimal `json:"discount_percent"`
	WidthMM         decimal.NullDecimal `json:"width_mm"`
	HeightMM        decimal.NullDecimal `json:"height_mm"`
	LengthMM        decimal.NullDecimal `json:"length_mm"`
	DurationHours   decimal.NullDecimal `json:"duration_hours"`
	Comment         string              `json:"comment"`
	Reprice         bool                `json:"reprice"`
}

type workOrderRequest struct {
	CustomerID          string                 `json:"customer_id"`
	Title               string                 `json:"title"`
	ScheduledStart      *time.Time             `json:"scheduled_start"`
	ScheduledEnd        *time.Time             `json:"scheduled_end"`
	Address             string                 `json:"address"`
	Notes               string                 `json:"notes"`
	TaxDeductionEnabled bool                   `json:"tax_deduction_enabled"`
	TaxDeductionPercent decimal.NullDecimal    `json:"tax_deduction_percent"`
	CatalogSnapshotID   string                 `json:"catalog_snapshot_id"`
	Lines               []workOrderLineRequest `json:"lines"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (r workOrderRequest) input() workorderdomain.WorkOrderInput {
	return workorderdomain.WorkOrderInput{
		CustomerID:          strings.TrimSpace(r.CustomerID),
		Title:               strings.TrimSpace(r.Title),
		ScheduledStart:      r.ScheduledStart,
		ScheduledEnd:        r.ScheduledEnd,
		Address:             strings.TrimSpace(r.Address),
		Notes:               strings.TrimSpace(r.Notes),
		TaxDeductionEnabled: r.TaxDeductionEnabled,
		TaxDeductionPercent: r.TaxDeductionPercent,
		CatalogSnapshotID:   strings.TrimSpace(r.CatalogSnapshotID),
		Lines:               lineInputs(r.Lines),
	}
}

func lineInputs(lines []workOrderLineRequest) []workorderdomain.LineInput {
	out := make([]workorderdomain.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, workorderdomain.LineInput{
			ID:              strings.TrimSpace(l.ID),
			CatalogItemID:   strings.TrimSpace(l.CatalogItemID),
			Count:           l.Count,
			DiscountPercent: l.DiscountPercent,
			WidthMM:         l.WidthMM,
			HeightMM:        l.HeightMM,
			LengthMM:        l.LengthMM,
			DurationHours:   l.DurationHours,
			Comment:         strings.TrimSpace(l.Comment),
			Reprice:         l.Reprice,
		})
	}
	return out
}

func (s *Server) CreateWorkOrder(c *gin.Context) {
	var req workOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.workOrderSvc.Create(c.Request.Context(), workorderdomain.CreateWorkOrderRequest{
		WorkOrderInput: req.input(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": order})
}

// UpdateWorkOrder replaces the editable fields and the full line list.
func (s *Server) UpdateWorkOrder(c *gin.Context) {
	var req workOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.workOrderSvc.Update(c.Request.Context(), workorderdomain.UpdateWorkOrderRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		WorkOrderInput: req.input(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetWorkOrder(c *gin.Context) {
	order, err := s.workOrderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) ListWorkOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status        string `form:"status"`
		CustomerID    string `form:"customer_id"`
		ScheduledFrom string `form:"scheduled_from"`
		ScheduledTo   string `form:"scheduled_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	scheduledFrom, err := parseOptionalTime(query.ScheduledFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("scheduled_from", "invalid_scheduled_from", "invalid scheduled_from"))
		return
	}
	scheduledTo, err := parseOptionalTime(query.ScheduledTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("scheduled_to", "invalid_scheduled_to", "invalid scheduled_to"))
		return
	}

	resp, err := s.workOrderSvc.List(c.Request.Context(), workorderdomain.ListWorkOrderRequest{
		Pagination:    query.Pagination,
		Status:        strings.TrimSpace(query.Status),
		CustomerID:    strings.TrimSpace(query.CustomerID),
		ScheduledFrom: scheduledFrom,
		ScheduledTo:   scheduledTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.WorkOrders, "page_info": resp.PageInfo})
}

func (s *Server) UpdateWorkOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.workOrderSvc.UpdateStatus(c.Request.Context(), workorderdomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetWorkOrderSummary(c *gin.Context) {
	summary, err := s.workOrderSvc.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) GetWorkOrderDocument(c *gin.Context) {
	filename, pdf, err := s.documentSvc.WorkOrderPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func isWorkOrderValidationError(err error) bool {
	switch err {
	case workorderdomain.ErrInvalidOrganization,
		workorderdomain.ErrInvalidID,
		workorderdomain.ErrInvalidCustomer,
		workorderdomain.ErrInvalidCatalogItem,
		workorderdomain.ErrInvalidCount,
		workorderdomain.ErrInvalidDiscountPercent,
		workorderdomain.ErrInvalidTaxDeductionPercent,
		workorderdomain.ErrInvalidStatus,
		workorderdomain.ErrInvalidSchedule,
		workorderdomain.ErrInvalidPageToken,
		workorderdomain.ErrEmptyLines,
		workorderdomain.ErrInvalidCatalogSnapshot,
		workorderdomain.ErrInvalidLineID,
		workorderdomain.ErrInvalidMeasure:
		return true
	default:
		return false
	}
}
