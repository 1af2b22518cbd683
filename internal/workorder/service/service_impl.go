package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/catalog/snapshot"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/config"
	customerdomain "github.com/smallbiznis/glazier/internal/customer/domain"
	"github.com/smallbiznis/glazier/internal/document/format"
	"github.com/smallbiznis/glazier/internal/events"
	"github.com/smallbiznis/glazier/internal/observability/metrics"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/smallbiznis/glazier/internal/workorder/domain"
	"github.com/smallbiznis/glazier/pkg/db"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// numberAttempts bounds retries when two orders race for the same number.
const numberAttempts = 3

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
	CatalogSvc  catalogdomain.Service
	Snapshots   *snapshot.Service `optional:"true"`
	AuditSvc    auditdomain.Service
	Publisher   events.Publisher
	Metrics     *metrics.Metrics `optional:"true"`
	PricingCfg  *config.PricingConfigHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	customerSvc customerdomain.Service
	catalogSvc  catalogdomain.Service
	snapshots   *snapshot.Service
	auditSvc    auditdomain.Service
	publisher   events.Publisher
	metrics     *metrics.Metrics
	pricingCfg  *config.PricingConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("workorder.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		catalogSvc:  p.CatalogSvc,
		snapshots:   p.Snapshots,
		auditSvc:    p.AuditSvc,
		publisher:   p.Publisher,
		metrics:     p.Metrics,
		pricingCfg:  p.PricingCfg,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateWorkOrderRequest) (domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.WorkOrder{}, domain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	order := domain.WorkOrder{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, &order, req.WorkOrderInput, nil); err != nil {
		return domain.WorkOrder{}, err
	}

	if err := s.insert(ctx, &order); err != nil {
		return domain.WorkOrder{}, err
	}

	s.afterWrite(ctx, order, "create", auditdomain.ActionWorkOrderCreate, events.WorkOrderCreated, nil)
	return order, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateWorkOrderRequest) (domain.WorkOrder, error) {
	existing, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if existing.Status.Final() {
		return domain.WorkOrder{}, domain.ErrLocked
	}

	previous := make(map[snowflake.ID]domain.Line, len(existing.Lines))
	for _, line := range existing.Lines {
		previous[line.ID] = line
	}

	order := existing
	order.UpdatedAt = s.clock.Now()
	if err := s.apply(ctx, &order, req.WorkOrderInput, previous); err != nil {
		return domain.WorkOrder{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Update(ctx, tx, &order)
	})
	if err != nil {
		return domain.WorkOrder{}, fmt.Errorf("update work order: %w", err)
	}

	s.afterWrite(ctx, order, "update", auditdomain.ActionWorkOrderUpdate, events.WorkOrderUpdated, nil)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.WorkOrder, error) {
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, req domain.ListWorkOrderRequest) (domain.ListWorkOrderResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListWorkOrderResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.Size()
	filter := domain.ListWorkOrderFilter{
		ScheduledFrom: req.ScheduledFrom,
		ScheduledTo:   req.ScheduledTo,
		Limit:         pageSize,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := domain.Status(strings.ToLower(raw))
		if !status.Valid() {
			return domain.ListWorkOrderResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListWorkOrderResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeCursor(token)
		if err != nil {
			return domain.ListWorkOrderResponse{}, err
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return domain.ListWorkOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.WorkOrder) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]domain.WorkOrder, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}
	return domain.ListWorkOrderResponse{PageInfo: pageInfo, WorkOrders: orders}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.WorkOrder, error) {
	next := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !next.Valid() {
		return domain.WorkOrder{}, domain.ErrInvalidStatus
	}

	order, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return domain.WorkOrder{}, domain.ErrInvalidTransition
	}

	previous := order.Status
	order.Status = next
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, &order); err != nil {
		return domain.WorkOrder{}, fmt.Errorf("update work order status: %w", err)
	}

	s.afterWrite(ctx, order, "", auditdomain.ActionWorkOrderStatus, events.WorkOrderStatusChanged, &previous)
	return order, nil
}

// Summary reports the totals stored with the order. The deduction is derived
// here from the stored line totals and never persisted.
func (s *Service) Summary(ctx context.Context, id string) (domain.Summary, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return domain.Summary{}, err
	}

	cfg := s.pricingCfg.Get()
	quote := order.StoredQuote()
	return domain.Summary{
		WorkOrderID:    order.ID,
		Number:         order.Number,
		Currency:       cfg.Currency,
		DeductionLabel: cfg.DeductionLabel,
		Lines:          quote.Lines,
		Totals:         quote.Totals,
	}, nil
}

// Preview prices unsaved form input. Unknown catalog items are skipped with a
// warning instead of failing the request.
func (s *Service) Preview(ctx context.Context, req domain.PreviewRequest) (domain.PreviewResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.PreviewResponse{}, domain.ErrInvalidOrganization
	}

	catalog, err := s.previewCatalog(ctx, req.CatalogSnapshotID)
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	lines := make([]pricing.Line, 0, len(req.Lines))
	for _, in := range req.Lines {
		lines = append(lines, pricing.Line{
			CatalogItemID:   strings.TrimSpace(in.CatalogItemID),
			Count:           in.Count,
			DiscountPercent: in.DiscountPercent,
			WidthMM:         in.WidthMM,
			HeightMM:        in.HeightMM,
			LengthMM:        in.LengthMM,
			DurationHours:   in.DurationHours,
		})
	}

	deduction := pricing.Deduction{Enabled: req.TaxDeductionEnabled, Percent: req.TaxDeductionPercent}
	quote := pricing.Price(lines, catalog, deduction)

	warnings := []domain.Warning{}
	skipped := quote.SkippedLines()
	for _, idx := range skipped {
		line := idx
		warnings = append(warnings, domain.Warning{Code: domain.WarningUnknownCatalogItem, Line: &line})
	}
	if quote.DeductionWithoutLabor(deduction) {
		warnings = append(warnings, domain.Warning{Code: domain.WarningDeductionWithoutLabor})
		s.metrics.RecordDeductionWithoutLabor(ctx, orgID.String(), "preview")
	}
	if req.TaxDeductionEnabled && s.checkDeduction(true, req.TaxDeductionPercent) != nil {
		warnings = append(warnings, domain.Warning{Code: domain.WarningDeductionPercent})
	}

	s.metrics.RecordPricingPreview(ctx, orgID.String())
	s.metrics.RecordSkippedLines(ctx, orgID.String(), len(skipped))

	return domain.PreviewResponse{
		CatalogSnapshotID: strings.TrimSpace(req.CatalogSnapshotID),
		Lines:             quote.Lines,
		Totals:            quote.Totals,
		Warnings:          warnings,
	}, nil
}

func (s *Service) previewCatalog(ctx context.Context, snapshotID string) (pricing.Catalog, error) {
	snapshotID = strings.TrimSpace(snapshotID)
	if snapshotID == "" {
		live, err := s.catalogSvc.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return live, nil
	}
	return s.pinnedCatalog(ctx, snapshotID)
}

// pinnedCatalog loads a stored catalog snapshot. It returns nil when
// snapshotID is empty.
func (s *Service) pinnedCatalog(ctx context.Context, snapshotID string) (pricing.Catalog, error) {
	snapshotID = strings.TrimSpace(snapshotID)
	if snapshotID == "" {
		return nil, nil
	}
	if s.snapshots == nil {
		return nil, domain.ErrInvalidCatalogSnapshot
	}
	snap, err := s.snapshots.Get(ctx, snapshotID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, domain.ErrInvalidCatalogSnapshot
	}
	if err != nil {
		return nil, err
	}
	return snap.Catalog(), nil
}

// apply validates in and writes it onto order, pricing every line. previous
// holds the lines already stored on the order; a line that keeps its id and
// catalog item keeps its stored snapshot.
func (s *Service) apply(ctx context.Context, order *domain.WorkOrder, in domain.WorkOrderInput, previous map[snowflake.ID]domain.Line) error {
	customerID, err := s.resolveCustomer(ctx, in.CustomerID)
	if err != nil {
		return err
	}
	if in.ScheduledStart != nil && in.ScheduledEnd != nil && in.ScheduledEnd.Before(*in.ScheduledStart) {
		return domain.ErrInvalidSchedule
	}
	if err := s.checkDeduction(in.TaxDeductionEnabled, in.TaxDeductionPercent); err != nil {
		return err
	}

	lines, err := s.resolveLines(ctx, order.ID, in, previous)
	if err != nil {
		return err
	}

	order.CustomerID = customerID
	order.Title = strings.TrimSpace(in.Title)
	order.ScheduledStart = utc(in.ScheduledStart)
	order.ScheduledEnd = utc(in.ScheduledEnd)
	order.Address = strings.TrimSpace(in.Address)
	order.Notes = strings.TrimSpace(in.Notes)
	order.TaxDeductionEnabled = in.TaxDeductionEnabled
	order.TaxDeductionPercent = in.TaxDeductionPercent
	order.Lines = lines

	order.Reprice()
	return nil
}

func (s *Service) resolveCustomer(ctx context.Context, raw string) (snowflake.ID, error) {
	customer, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: raw})
	switch {
	case errors.Is(err, customerdomain.ErrNotFound), errors.Is(err, customerdomain.ErrInvalidID):
		return 0, domain.ErrInvalidCustomer
	case err != nil:
		return 0, err
	}
	return customer.ID, nil
}

// resolveLines builds the order lines. Lines priced fresh take their snapshot
// from the pinned catalog snapshot when order names one, otherwise from the
// live catalog. Either way the item must still exist and be active.
func (s *Service) resolveLines(ctx context.Context, orderID snowflake.ID, order domain.WorkOrderInput, previous map[snowflake.ID]domain.Line) ([]domain.Line, error) {
	inputs := order.Lines
	if len(inputs) == 0 {
		return nil, domain.ErrEmptyLines
	}

	lines := make([]domain.Line, len(inputs))
	fresh := make([]int, 0, len(inputs))
	freshIDs := make([]snowflake.ID, 0, len(inputs))
	seen := make(map[snowflake.ID]struct{}, len(inputs))

	for i, in := range inputs {
		if in.Count < 1 {
			return nil, domain.ErrInvalidCount
		}
		if in.DiscountPercent.Valid && (!inRange(in.DiscountPercent.Decimal, hundred) || !fitsScale(in.DiscountPercent, 2)) {
			return nil, domain.ErrInvalidDiscountPercent
		}
		for _, m := range []decimal.NullDecimal{in.WidthMM, in.HeightMM, in.LengthMM, in.DurationHours} {
			if !fitsScale(m, 2) {
				return nil, domain.ErrInvalidMeasure
			}
		}
		itemID, err := snowflake.ParseString(strings.TrimSpace(in.CatalogItemID))
		if err != nil || itemID == 0 {
			return nil, domain.ErrInvalidCatalogItem
		}

		line := domain.Line{
			WorkOrderID:     orderID,
			Position:        i + 1,
			CatalogItemID:   itemID,
			Count:           in.Count,
			DiscountPercent: in.DiscountPercent,
			WidthMM:         in.WidthMM,
			HeightMM:        in.HeightMM,
			LengthMM:        in.LengthMM,
			DurationHours:   in.DurationHours,
			Comment:         strings.TrimSpace(in.Comment),
		}

		prev, known := previousLine(previous, in.ID)
		if known {
			if _, dup := seen[prev.ID]; dup {
				return nil, domain.ErrInvalidLineID
			}
			seen[prev.ID] = struct{}{}
			line.ID = prev.ID
		} else {
			line.ID = s.genID.Generate()
		}

		if known && prev.CatalogItemID == itemID && !in.Reprice {
			line.ApplySnapshot(prev.Snapshot())
			line.Description = prev.Description
		} else {
			fresh = append(fresh, i)
			freshIDs = append(freshIDs, itemID)
		}
		lines[i] = line
	}

	pinned, err := s.pinnedCatalog(ctx, order.CatalogSnapshotID)
	if err != nil {
		return nil, err
	}
	if len(fresh) == 0 {
		return lines, nil
	}

	items, err := s.catalogSvc.FindByIDs(ctx, freshIDs)
	if err != nil {
		return nil, err
	}
	for _, i := range fresh {
		item, ok := items[lines[i].CatalogItemID]
		if !ok || !item.Active {
			return nil, domain.ErrInvalidCatalogItem
		}
		priced := item.PricingItem()
		if pinned != nil {
			priced, ok = pinned.Lookup(lines[i].CatalogItemID.String())
			if !ok {
				return nil, domain.ErrInvalidCatalogItem
			}
		}
		lines[i].ApplySnapshot(pricing.SnapshotOf(priced))
		lines[i].Description = item.Name
	}
	return lines, nil
}

func previousLine(previous map[snowflake.ID]domain.Line, raw string) (domain.Line, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(previous) == 0 {
		return domain.Line{}, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return domain.Line{}, false
	}
	line, ok := previous[id]
	return line, ok
}

// checkDeduction requires a percent within the configured bound when the
// deduction is enabled. A disabled deduction may still carry a percent, which
// is then range checked too.
func (s *Service) checkDeduction(enabled bool, percent decimal.NullDecimal) error {
	if !percent.Valid {
		if enabled {
			return domain.ErrInvalidTaxDeductionPercent
		}
		return nil
	}
	if !inRange(percent.Decimal, s.pricingCfg.Get().MaxDeduction()) || !fitsScale(percent, 2) {
		return domain.ErrInvalidTaxDeductionPercent
	}
	return nil
}

func (s *Service) insert(ctx context.Context, order *domain.WorkOrder) error {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		count, err := s.repo.Count(ctx, s.db, order.OrgID)
		if err != nil {
			return fmt.Errorf("count work orders: %w", err)
		}
		number, err := format.Number(format.DefaultWorkOrderNumberTemplate, order.CreatedAt, count+1+int64(attempt))
		if err != nil {
			return err
		}
		order.Number = number

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.repo.Insert(ctx, tx, order)
		})
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return fmt.Errorf("insert work order: %w", err)
		}
		s.log.Debug("work order number taken, retrying", zap.String("number", number))
	}
	return fmt.Errorf("insert work order: no free number after %d attempts", numberAttempts)
}

func (s *Service) load(ctx context.Context, rawID string) (domain.WorkOrder, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.WorkOrder{}, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.WorkOrder{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.WorkOrder{}, err
	}
	if order == nil {
		return domain.WorkOrder{}, domain.ErrNotFound
	}
	return *order, nil
}

type eventPayload struct {
	Number         string          `json:"number"`
	CustomerID     string          `json:"customer_id"`
	Status         domain.Status   `json:"status"`
	PreviousStatus domain.Status   `json:"previous_status,omitempty"`
	TotalExclTax   decimal.Decimal `json:"total_excl_tax"`
	TotalInclTax   decimal.Decimal `json:"total_incl_tax"`
}

// afterWrite records audit, metrics and the outgoing event. None of them can
// fail the request. operation is empty for writes that do not reprice.
func (s *Service) afterWrite(ctx context.Context, order domain.WorkOrder, operation, action string, eventType events.Type, previous *domain.Status) {
	orgID := order.OrgID.String()
	if operation != "" {
		s.metrics.RecordWorkOrderPriced(ctx, orgID, operation)
		if order.StoredQuote().DeductionWithoutLabor(order.Deduction()) {
			s.metrics.RecordDeductionWithoutLabor(ctx, orgID, "work_order")
		}
	}

	payload := eventPayload{
		Number:       order.Number,
		CustomerID:   order.CustomerID.String(),
		Status:       order.Status,
		TotalExclTax: order.TotalExclTax,
		TotalInclTax: order.TotalInclTax,
	}
	metadata := map[string]any{
		"number":         order.Number,
		"status":         string(order.Status),
		"total_incl_tax": order.TotalInclTax.String(),
		"lines":          len(order.Lines),
	}
	if previous != nil {
		payload.PreviousStatus = *previous
		metadata["previous_status"] = string(*previous)
	}

	if s.auditSvc != nil {
		targetID := order.ID.String()
		if err := s.auditSvc.AuditLog(ctx, &order.OrgID, "", nil, action, "work_order", &targetID, metadata); err != nil {
			s.log.Warn("audit failed", zap.String("action", action), zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}
	event, err := events.New(ctx, eventType, orgID, order.ID.String(), payload, order.UpdatedAt)
	if err != nil {
		s.log.Warn("build event failed", zap.String("event_type", string(eventType)), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish event failed",
			zap.String("event_type", string(eventType)),
			zap.String("work_order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func inRange(v, limit decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(limit)
}

// fitsScale reports whether v has no more than places decimals, the scale of
// the column it is stored in.
func fitsScale(v decimal.NullDecimal, places int32) bool {
	return !v.Valid || v.Decimal.Equal(v.Decimal.Truncate(places))
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func decodeCursor(token string) (*domain.WorkOrderCursor, error) {
	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, domain.ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
	if err != nil {
		return nil, domain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(decoded.ID)
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidPageToken
	}
	return &domain.WorkOrderCursor{ID: id, CreatedAt: createdAt}, nil
}
