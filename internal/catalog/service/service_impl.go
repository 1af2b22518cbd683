package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	"github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/smallbiznis/glazier/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("catalog.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateItemRequest) (domain.Item, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Item{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, domain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	}
	if !slug.IsSlug(code) {
		return domain.Item{}, domain.ErrInvalidCode
	}

	model, err := pricing.ParseModel(req.PricingModel)
	if err != nil {
		return domain.Item{}, domain.ErrInvalidPricingModel
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = domain.DefaultUnit(model)
	}

	now := s.clock.Now()
	item := domain.Item{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		Code:             code,
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		Unit:             unit,
		UnitPriceExclTax: req.UnitPriceExclTax,
		VATRate:          req.VATRate,
		PricingModel:     model,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	applyPrices(&item, req.UnitPriceInclTax)
	if err := validatePrices(item); err != nil {
		return domain.Item{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Item{}, domain.ErrDuplicateCode
		}
		return domain.Item{}, fmt.Errorf("insert catalog item: %w", err)
	}

	s.audit(ctx, auditdomain.ActionCatalogItemCreate, item)
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateItemRequest) (domain.Item, error) {
	existing, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Item{}, err
	}

	item := existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Item{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Unit != nil {
		item.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.PricingModel != nil {
		model, err := pricing.ParseModel(*req.PricingModel)
		if err != nil {
			return domain.Item{}, domain.ErrInvalidPricingModel
		}
		item.PricingModel = model
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	priceChanged := false
	if req.UnitPriceExclTax.Valid {
		item.UnitPriceExclTax = req.UnitPriceExclTax.Decimal
		priceChanged = true
	}
	if req.VATRate.Valid {
		item.VATRate = req.VATRate.Decimal
		priceChanged = true
	}
	if priceChanged || req.UnitPriceInclTax.Valid {
		applyPrices(&item, req.UnitPriceInclTax)
	}
	if err := validatePrices(item); err != nil {
		return domain.Item{}, err
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return domain.Item{}, fmt.Errorf("update catalog item: %w", err)
	}

	s.audit(ctx, auditdomain.ActionCatalogItemUpdate, item)
	return item, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Item, error) {
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, req domain.ListItemRequest) (domain.ListItemResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListItemResponse{}, domain.ErrInvalidOrganization
	}

	model := strings.TrimSpace(req.Model)
	if model != "" {
		parsed, err := pricing.ParseModel(model)
		if err != nil {
			return domain.ListItemResponse{}, domain.ErrInvalidPricingModel
		}
		model = parsed.String()
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	items, total, err := s.repo.List(ctx, s.db, orgID, domain.ListItemFilter{
		Name:    req.Name,
		Active:  req.Active,
		Model:   model,
		SortBy:  req.SortBy,
		SortDir: req.SortDir,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	})
	if err != nil {
		return domain.ListItemResponse{}, err
	}

	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return domain.ListItemResponse{Items: out, Total: total, Page: page}, nil
}

// Archive hides the item from new orders. Orders that already reference it
// keep pricing from their stored snapshot.
func (s *Service) Archive(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}
	if !item.Active {
		return item, nil
	}

	item.Active = false
	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &item); err != nil {
		return domain.Item{}, fmt.Errorf("archive catalog item: %w", err)
	}

	s.audit(ctx, auditdomain.ActionCatalogItemArchive, item)
	return item, nil
}

func (s *Service) FindByIDs(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.Item, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.FindByIDs(ctx, s.db, orgID, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]domain.Item, len(items))
	for _, item := range items {
		out[item.ID] = *item
	}
	return out, nil
}

func (s *Service) Snapshot(ctx context.Context) (pricing.CatalogMap, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}

	active := true
	items, _, err := s.repo.List(ctx, s.db, orgID, domain.ListItemFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	catalog := make(pricing.CatalogMap, len(items))
	for _, item := range items {
		catalog[item.ID.String()] = item.PricingItem()
	}
	return catalog, nil
}

func (s *Service) load(ctx context.Context, rawID string) (domain.Item, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Item{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.Item{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Item{}, err
	}
	if item == nil {
		return domain.Item{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) audit(ctx context.Context, action string, item domain.Item) {
	if s.auditSvc == nil {
		return
	}
	targetID := item.ID.String()
	metadata := map[string]any{
		"code":                item.Code,
		"pricing_model":       item.PricingModel.String(),
		"unit_price_excl_tax": item.UnitPriceExclTax.String(),
		"unit_price_incl_tax": item.UnitPriceInclTax.String(),
		"vat_rate":            item.VATRate.String(),
		"active":              item.Active,
	}
	if err := s.auditSvc.AuditLog(ctx, &item.OrgID, "", nil, action, "catalog_item", &targetID, metadata); err != nil {
		s.log.Warn("audit failed", zap.String("action", action), zap.Error(err))
	}
}

// applyPrices sets the incl. tax price, either the explicit override or
// excl * (1 + vat/100).
func applyPrices(item *domain.Item, inclOverride decimal.NullDecimal) {
	if inclOverride.Valid {
		item.UnitPriceInclTax = inclOverride.Decimal
		return
	}
	item.UnitPriceInclTax = pricing.InclTax(item.UnitPriceExclTax, item.VATRate)
}

func validatePrices(item domain.Item) error {
	switch item.PricingItem().Validate() {
	case nil:
		return nil
	case pricing.ErrNegativeVATRate:
		return domain.ErrInvalidVATRate
	case pricing.ErrUnknownModel:
		return domain.ErrInvalidPricingModel
	default:
		return domain.ErrInvalidUnitPrice
	}
}
