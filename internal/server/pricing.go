package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	workorderdomain "github.com/smallbiznis/glazier/internal/workorder/domain"
)

type pricingPreviewRequest struct {
	CatalogSnapshotID   string                 `json:"catalog_snapshot_id"`
	TaxDeductionEnabled bool                   `json:"tax_deduction_enabled"`
	TaxDeductionPercent decimal.NullDecimal    `json:"tax_deduction_percent"`
	Lines               []workOrderLineRequest `json:"lines"`
}

type pricingSettingsResponse struct {
	Currency                string          `json:"currency"`
	Precision               int32           `json:"precision"`
	DefaultDeductionPercent decimal.Decimal `json:"default_tax_deduction_percent"`
	MaxDeductionPercent     decimal.Decimal `json:"max_tax_deduction_percent"`
	DeductionLabel          string          `json:"tax_deduction_label"`
}

// PreviewPricing prices an unsaved order as the form is edited. Unknown
// items and questionable deduction settings come back as warnings.
func (s *Server) PreviewPricing(c *gin.Context) {
	var req pricingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.Preview(c.Request.Context(), workorderdomain.PreviewRequest{
		CatalogSnapshotID:   strings.TrimSpace(req.CatalogSnapshotID),
		TaxDeductionEnabled: req.TaxDeductionEnabled,
		TaxDeductionPercent: req.TaxDeductionPercent,
		Lines:               lineInputs(req.Lines),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingSettings(c *gin.Context) {
	cfg := s.pricingCfg.Get()
	c.JSON(http.StatusOK, gin.H{"data": pricingSettingsResponse{
		Currency:                cfg.Currency,
		Precision:               cfg.Precision,
		DefaultDeductionPercent: cfg.DefaultDeduction(),
		MaxDeductionPercent:     cfg.MaxDeduction(),
		DeductionLabel:          cfg.DeductionLabel,
	}})
}
