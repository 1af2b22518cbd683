package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
)

type createCatalogItemRequest struct {
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Unit             string              `json:"unit"`
	UnitPriceExclTax decimal.Decimal     `json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.NullDecimal `json:"unit_price_incl_tax"`
	VATRate          decimal.Decimal     `json:"vat_rate"`
	PricingModel     string              `json:"pricing_model"`
}

type updateCatalogItemRequest struct {
	Name             *string             `json:"name"`
	Description      *string             `json:"description"`
	Unit             *string             `json:"unit"`
	UnitPriceExclTax decimal.NullDecimal `json:"unit_price_excl_tax"`
	UnitPriceInclTax decimal.NullDecimal `json:"unit_price_incl_tax"`
	VATRate          decimal.NullDecimal `json:"vat_rate"`
	PricingModel     *string             `json:"pricing_model"`
	Active           *bool               `json:"active"`
}

func (s *Server) CreateCatalogItem(c *gin.Context) {
	var req createCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateItemRequest{
		Code:             strings.TrimSpace(req.Code),
		Name:             strings.TrimSpace(req.Name),
		Description:      strings.TrimSpace(req.Description),
		Unit:             strings.TrimSpace(req.Unit),
		UnitPriceExclTax: req.UnitPriceExclTax,
		UnitPriceInclTax: req.UnitPriceInclTax,
		VATRate:          req.VATRate,
		PricingModel:     req.PricingModel,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateCatalogItem(c *gin.Context) {
	var req updateCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateItemRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		Name:             req.Name,
		Description:      req.Description,
		Unit:             req.Unit,
		UnitPriceExclTax: req.UnitPriceExclTax,
		UnitPriceInclTax: req.UnitPriceInclTax,
		VATRate:          req.VATRate,
		PricingModel:     req.PricingModel,
		Active:           req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetCatalogItem(c *gin.Context) {
	item, err := s.catalogSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListCatalogItems(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Active   string `form:"active"`
		Model    string `form:"pricing_model"`
		SortBy   string `form:"sort_by"`
		SortDir  string `form:"sort_dir"`
		Page     string `form:"page"`
		PageSize string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}
	page, err := parseOptionalInt(query.Page, 1)
	if err != nil {
		AbortWithError(c, newValidationError("page", "invalid_page", "invalid page"))
		return
	}
	pageSize, err := parseOptionalInt(query.PageSize, 0)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page_size"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListItemRequest{
		Name:     strings.TrimSpace(query.Name),
		Active:   active,
		Model:    strings.TrimSpace(query.Model),
		SortBy:   strings.TrimSpace(query.SortBy),
		SortDir:  strings.TrimSpace(query.SortDir),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Items, "total": resp.Total, "page": resp.Page})
}

func (s *Server) ArchiveCatalogItem(c *gin.Context) {
	item, err := s.catalogSvc.Archive(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// CreateCatalogSnapshot freezes the active catalog so a quoting session
// prices against stable numbers.
func (s *Server) CreateCatalogSnapshot(c *gin.Context) {
	snap, err := s.snapshots.Create(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": snap})
}

func (s *Server) GetCatalogSnapshot(c *gin.Context) {
	snap, err := s.snapshots.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidOrganization,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidCode,
		catalogdomain.ErrInvalidUnitPrice,
		catalogdomain.ErrInvalidVATRate,
		catalogdomain.ErrInvalidPricingModel,
		catalogdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
