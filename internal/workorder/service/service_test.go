package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/glazier/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/glazier/internal/catalog/service"
	"github.com/smallbiznis/glazier/internal/catalog/snapshot"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/config"
	customerdomain "github.com/smallbiznis/glazier/internal/customer/domain"
	customerrepo "github.com/smallbiznis/glazier/internal/customer/repository"
	customerservice "github.com/smallbiznis/glazier/internal/customer/service"
	"github.com/smallbiznis/glazier/internal/events"
	"github.com/smallbiznis/glazier/internal/observability/metrics"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/internal/pricing"
	"github.com/smallbiznis/glazier/internal/workorder/domain"
	"github.com/smallbiznis/glazier/internal/workorder/repository"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditMock struct {
	mock.Mock
}

func (m *auditMock) AuditLog(ctx context.Context, orgID *snowflake.ID, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	args := m.Called(ctx, orgID, actorType, actorID, action, targetType, targetID, metadata)
	return args.Error(0)
}

func (m *auditMock) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(auditdomain.ListAuditLogResponse), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	catalog   catalogdomain.Service
	snapshots *snapshot.Service
	publisher *recordingPublisher
	audit     *auditMock
	clock     *clock.FakeClock

	customer customerdomain.Customer
	glass    catalogdomain.Item
	labor    catalogdomain.Item
	sealant  catalogdomain.Item
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}, &catalogdomain.Item{}, &domain.WorkOrder{}, &domain.Line{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	audit := &auditMock{}
	audit.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	customers := customerservice.New(customerservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Repo: customerrepo.Provide(), AuditSvc: audit,
	})
	catalog := catalogservice.New(catalogservice.Params{
		DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: catalogrepo.Provide(), AuditSvc: audit,
	})
	snapshots := snapshot.NewService(catalog, snapshot.NewMemoryStore(clk), clk, time.Hour, zap.NewNop())
	publisher := &recordingPublisher{}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		CustomerSvc: customers,
		CatalogSvc:  catalog,
		Snapshots:   snapshots,
		AuditSvc:    audit,
		Publisher:   publisher,
		Metrics:     metrics.NewNoop(),
		PricingCfg:  config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
	})

	ctx := orgCtx()
	customer, err := customers.Create(ctx, customerdomain.CreateCustomerRequest{Name: "Anna Svensson", PersonalIdentity: "198001011234"})
	require.NoError(t, err)
	glass, err := catalog.Create(ctx, catalogdomain.CreateItemRequest{
		Name: "Float glass 4mm", PricingModel: "per_area",
		UnitPriceExclTax: decimal.NewFromInt(1000), VATRate: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	labor, err := catalog.Create(ctx, catalogdomain.CreateItemRequest{
		Name: "Installation", PricingModel: "per_duration",
		UnitPriceExclTax: decimal.NewFromInt(500), VATRate: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	sealant, err := catalog.Create(ctx, catalogdomain.CreateItemRequest{
		Name: "Sealant", PricingModel: "per_unit",
		UnitPriceExclTax: decimal.NewFromInt(80), VATRate: decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	return &fixture{
		db:        db,
		svc:       svc,
		catalog:   catalog,
		snapshots: snapshots,
		publisher: publisher,
		audit:     audit,
		clock:     clk,
		customer:  customer,
		glass:     glass,
		labor:     labor,
		sealant:   sealant,
	}
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), snowflake.ID(100))
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nd(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(v))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func (f *fixture) input() domain.WorkOrderInput {
	return domain.WorkOrderInput{
		CustomerID:          f.customer.ID.String(),
		Title:               "Replace living room windows",
		TaxDeductionEnabled: true,
		TaxDeductionPercent: nd("30"),
		Lines: []domain.LineInput{
			{CatalogItemID: f.glass.ID.String(), Count: 2, WidthMM: nd("1000"), HeightMM: nd("500")},
			{CatalogItemID: f.labor.ID.String(), Count: 1, DurationHours: nd("3")},
		},
	}
}

func TestCreateWorkOrder(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)

	assert.Equal(t, "WO-20260302-0001", order.Number)
	assert.Equal(t, domain.StatusDraft, order.Status)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Float glass 4mm", order.Lines[0].Description)
	assertDecimal(t, "1000", order.Lines[0].LineTotalExclTax)
	assertDecimal(t, "1250", order.Lines[0].LineTotalInclTax)
	assertDecimal(t, "1875", order.Lines[1].LineTotalInclTax)
	assertDecimal(t, "2500", order.TotalExclTax)
	assertDecimal(t, "3125", order.TotalInclTax)

	stored, err := f.svc.Get(orgCtx(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, 1, stored.Lines[0].Position)
	assert.Equal(t, pricing.PerDuration, stored.Lines[1].PricingModel)

	summary, err := f.svc.Summary(orgCtx(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "SEK", summary.Currency)
	assert.Equal(t, "ROT", summary.DeductionLabel)
	assert.True(t, summary.Totals.HasLaborLines)
	assertDecimal(t, "1875", summary.Totals.LaborTotalInclTax)
	assertDecimal(t, "562.5", summary.Totals.DeductionAmount)
	assertDecimal(t, "2562.5", summary.Totals.PayableAmount)

	assert.Equal(t, []events.Type{events.WorkOrderCreated}, f.publisher.types())
	f.audit.AssertCalled(t, "AuditLog", mock.Anything, mock.Anything, "", mock.Anything, auditdomain.ActionWorkOrderCreate, "work_order", mock.Anything, mock.Anything)

	second, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)
	assert.Equal(t, "WO-20260302-0002", second.Number)
}

func TestCreateWorkOrderValidation(t *testing.T) {
	f := setup(t)

	archived, err := f.catalog.Create(orgCtx(), catalogdomain.CreateItemRequest{Name: "Old frame", PricingModel: "per_unit"})
	require.NoError(t, err)
	_, err = f.catalog.Archive(orgCtx(), archived.ID.String())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(in *domain.WorkOrderInput)
		err    error
	}{
		{"no lines", func(in *domain.WorkOrderInput) { in.Lines = nil }, domain.ErrEmptyLines},
		{"zero count", func(in *domain.WorkOrderInput) { in.Lines[0].Count = 0 }, domain.ErrInvalidCount},
		{"discount above 100", func(in *domain.WorkOrderInput) { in.Lines[0].DiscountPercent = nd("120") }, domain.ErrInvalidDiscountPercent},
		{"negative discount", func(in *domain.WorkOrderInput) { in.Lines[0].DiscountPercent = nd("-5") }, domain.ErrInvalidDiscountPercent},
		{"unknown item", func(in *domain.WorkOrderInput) { in.Lines[0].CatalogItemID = "12345" }, domain.ErrInvalidCatalogItem},
		{"malformed item", func(in *domain.WorkOrderInput) { in.Lines[0].CatalogItemID = "glass" }, domain.ErrInvalidCatalogItem},
		{"archived item", func(in *domain.WorkOrderInput) { in.Lines[0].CatalogItemID = archived.ID.String() }, domain.ErrInvalidCatalogItem},
		{"unknown customer", func(in *domain.WorkOrderInput) { in.CustomerID = "12345" }, domain.ErrInvalidCustomer},
		{"deduction without percent", func(in *domain.WorkOrderInput) { in.TaxDeductionPercent = decimal.NullDecimal{} }, domain.ErrInvalidTaxDeductionPercent},
		{"deduction above max", func(in *domain.WorkOrderInput) { in.TaxDeductionPercent = nd("101") }, domain.ErrInvalidTaxDeductionPercent},
		{"deduction beyond hundredths", func(in *domain.WorkOrderInput) { in.TaxDeductionPercent = nd("30.005") }, domain.ErrInvalidTaxDeductionPercent},
		{"discount beyond hundredths", func(in *domain.WorkOrderInput) { in.Lines[0].DiscountPercent = nd("10.125") }, domain.ErrInvalidDiscountPercent},
		{"duration beyond hundredths", func(in *domain.WorkOrderInput) { in.Lines[1].DurationHours = nd("1.333") }, domain.ErrInvalidMeasure},
		{"width beyond hundredths", func(in *domain.WorkOrderInput) { in.Lines[0].WidthMM = nd("1000.005") }, domain.ErrInvalidMeasure},
		{"unknown snapshot", func(in *domain.WorkOrderInput) { in.CatalogSnapshotID = "missing" }, domain.ErrInvalidCatalogSnapshot},
		{"end before start", func(in *domain.WorkOrderInput) {
			start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
			end := start.Add(-time.Hour)
			in.ScheduledStart, in.ScheduledEnd = &start, &end
		}, domain.ErrInvalidSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input()
			tt.mutate(&in)
			_, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: in})
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err = f.svc.Create(context.Background(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestCreateWorkOrderDeductionDisabledAllowsMissingPercent(t *testing.T) {
	f := setup(t)

	in := f.input()
	in.TaxDeductionEnabled = false
	in.TaxDeductionPercent = decimal.NullDecimal{}
	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: in})
	require.NoError(t, err)

	summary, err := f.svc.Summary(orgCtx(), order.ID.String())
	require.NoError(t, err)
	assert.True(t, summary.Totals.DeductionAmount.IsZero())
	assertDecimal(t, "3125", summary.Totals.PayableAmount)
}

func TestUpdateKeepsStoredSnapshot(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)

	_, err = f.catalog.Update(orgCtx(), catalogdomain.UpdateItemRequest{
		ID:               f.labor.ID.String(),
		UnitPriceExclTax: nd("600"),
	})
	require.NoError(t, err)

	in := f.input()
	in.Lines[0].ID = order.Lines[0].ID.String()
	in.Lines[1].ID = order.Lines[1].ID.String()
	in.Lines = append(in.Lines,
		domain.LineInput{CatalogItemID: f.labor.ID.String(), Count: 1, DurationHours: nd("1")},
		domain.LineInput{CatalogItemID: f.sealant.ID.String(), Count: 2},
	)

	updated, err := f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: order.ID.String(), WorkOrderInput: in})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 4)

	assert.Equal(t, order.Lines[1].ID, updated.Lines[1].ID)
	assertDecimal(t, "500", updated.Lines[1].UnitPriceExclTax)
	assertDecimal(t, "600", updated.Lines[2].UnitPriceExclTax)
	assertDecimal(t, "750", updated.Lines[2].LineTotalInclTax)
	assertDecimal(t, "200", updated.Lines[3].LineTotalInclTax)

	// 1250 + 1875 + 750 + 200
	assertDecimal(t, "4075", updated.TotalInclTax)

	stored, err := f.svc.Get(orgCtx(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Lines, 4)
	assertDecimal(t, "500", stored.Lines[1].UnitPriceExclTax)

	// Reprice takes the current catalog price for an unchanged line.
	in.Lines[1].Reprice = true
	repriced, err := f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: order.ID.String(), WorkOrderInput: in})
	require.NoError(t, err)
	assertDecimal(t, "600", repriced.Lines[1].UnitPriceExclTax)

	assert.Equal(t, []events.Type{events.WorkOrderCreated, events.WorkOrderUpdated, events.WorkOrderUpdated}, f.publisher.types())
}

func TestCreateWorkOrderAcceptsTrailingZeros(t *testing.T) {
	f := setup(t)

	in := f.input()
	in.Lines[1].DurationHours = nd("3.000")
	in.TaxDeductionPercent = nd("30.00")
	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: in})
	require.NoError(t, err)
	assertDecimal(t, "3125", order.TotalInclTax)
}

func TestUpdateRejectsRepeatedLineID(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)

	in := f.input()
	in.Lines[0].ID = order.Lines[0].ID.String()
	in.Lines[1].ID = order.Lines[0].ID.String()
	_, err = f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: order.ID.String(), WorkOrderInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidLineID)

	stored, err := f.svc.Get(orgCtx(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, order.Lines[0].ID, stored.Lines[0].ID)
	assert.Equal(t, order.Lines[1].ID, stored.Lines[1].ID)
	assertDecimal(t, "3125", stored.TotalInclTax)
	assert.Equal(t, []events.Type{events.WorkOrderCreated}, f.publisher.types())
}

func TestCreateWorkOrderAgainstPinnedSnapshot(t *testing.T) {
	f := setup(t)

	snap, err := f.snapshots.Create(orgCtx())
	require.NoError(t, err)

	_, err = f.catalog.Update(orgCtx(), catalogdomain.UpdateItemRequest{ID: f.labor.ID.String(), UnitPriceExclTax: nd("800")})
	require.NoError(t, err)

	in := f.input()
	in.CatalogSnapshotID = snap.ID
	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: in})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assertDecimal(t, "500", order.Lines[1].UnitPriceExclTax)
	assertDecimal(t, "1875", order.Lines[1].LineTotalInclTax)
	assertDecimal(t, "3125", order.TotalInclTax)

	stored, err := f.svc.Get(orgCtx(), order.ID.String())
	require.NoError(t, err)
	assertDecimal(t, "3125", stored.TotalInclTax)

	live, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)
	// 1250 + 3 * 800 * 1.25
	assertDecimal(t, "4250", live.TotalInclTax)

	frame, err := f.catalog.Create(orgCtx(), catalogdomain.CreateItemRequest{
		Name: "Frame", PricingModel: "per_unit",
		UnitPriceExclTax: decimal.NewFromInt(100), VATRate: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	in.Lines = append(in.Lines, domain.LineInput{CatalogItemID: frame.ID.String(), Count: 1})
	_, err = f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidCatalogItem)
}

func TestSummaryReportsStoredTotals(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.Line{}).Where("id = ?", order.Lines[1].ID).
		Update("line_total_incl_tax", d("1876.25")).Error)
	require.NoError(t, f.db.Model(&domain.WorkOrder{}).Where("id = ?", order.ID).
		Update("total_incl_tax", d("3126.25")).Error)

	summary, err := f.svc.Summary(orgCtx(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)
	assertDecimal(t, "1876.25", summary.Lines[1].TotalInclTax)
	assertDecimal(t, "3126.25", summary.Totals.TotalInclTax)
	assertDecimal(t, "1876.25", summary.Totals.LaborTotalInclTax)
	assertDecimal(t, "562.875", summary.Totals.DeductionAmount)
	assertDecimal(t, "2563.375", summary.Totals.PayableAmount)
}

func TestUpdateKeepsSnapshotOfArchivedItem(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)

	_, err = f.catalog.Archive(orgCtx(), f.glass.ID.String())
	require.NoError(t, err)

	in := f.input()
	in.Lines[0].ID = order.Lines[0].ID.String()
	in.Lines[1].ID = order.Lines[1].ID.String()
	in.Title = "Windows, revised"

	updated, err := f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: order.ID.String(), WorkOrderInput: in})
	require.NoError(t, err)
	assert.Equal(t, "Windows, revised", updated.Title)
	assertDecimal(t, "1000", updated.Lines[0].UnitPriceExclTax)

	in.Lines[0].Reprice = true
	_, err = f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: order.ID.String(), WorkOrderInput: in})
	assert.ErrorIs(t, err, domain.ErrInvalidCatalogItem)
}

func TestUpdateStatus(t *testing.T) {
	f := setup(t)

	order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
	require.NoError(t, err)
	id := order.ID.String()

	_, err = f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: id, Status: "finished"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: id, Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	for _, status := range []string{"scheduled", "in_progress", "completed"} {
		order, err = f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: id, Status: status})
		require.NoError(t, err)
		assert.Equal(t, domain.Status(status), order.Status)
	}

	_, err = f.svc.Update(orgCtx(), domain.UpdateWorkOrderRequest{ID: id, WorkOrderInput: f.input()})
	assert.ErrorIs(t, err, domain.ErrLocked)

	_, err = f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: id, Status: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	types := f.publisher.types()
	require.Len(t, types, 4)
	assert.Equal(t, events.WorkOrderStatusChanged, types[3])
}

func TestListWorkOrders(t *testing.T) {
	f := setup(t)

	var ids []snowflake.ID
	for i := 0; i < 3; i++ {
		order, err := f.svc.Create(orgCtx(), domain.CreateWorkOrderRequest{WorkOrderInput: f.input()})
		require.NoError(t, err)
		ids = append(ids, order.ID)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.UpdateStatus(orgCtx(), domain.UpdateStatusRequest{ID: ids[0].String(), Status: "scheduled"})
	require.NoError(t, err)

	page, err := f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, page.WorkOrders, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[2], page.WorkOrders[0].ID)

	next, err := f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: page.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, next.WorkOrders, 1)
	assert.False(t, next.HasMore)
	assert.Equal(t, ids[0], next.WorkOrders[0].ID)

	scheduled, err := f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Status: "scheduled"})
	require.NoError(t, err)
	require.Len(t, scheduled.WorkOrders, 1)
	assert.Equal(t, ids[0], scheduled.WorkOrders[0].ID)

	_, err = f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Status: "unknown"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.List(orgCtx(), domain.ListWorkOrderRequest{Pagination: pagination.Pagination{PageToken: "%%%"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestPreviewSkipsUnknownItemsWithWarnings(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.Preview(orgCtx(), domain.PreviewRequest{
		TaxDeductionEnabled: true,
		TaxDeductionPercent: nd("30"),
		Lines: []domain.LineInput{
			{CatalogItemID: f.glass.ID.String(), Count: 1, WidthMM: nd("1000"), HeightMM: nd("1000")},
			{CatalogItemID: "999", Count: 4},
			{CatalogItemID: "", Count: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Lines, 3)
	assert.True(t, resp.Lines[1].Skipped)
	assertDecimal(t, "1250", resp.Totals.TotalInclTax)
	assert.False(t, resp.Totals.HasLaborLines)
	assert.True(t, resp.Totals.DeductionAmount.IsZero())

	codes := make([]string, 0, len(resp.Warnings))
	for _, w := range resp.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{
		domain.WarningUnknownCatalogItem,
		domain.WarningUnknownCatalogItem,
		domain.WarningDeductionWithoutLabor,
	}, codes)
	require.NotNil(t, resp.Warnings[0].Line)
	assert.Equal(t, 1, *resp.Warnings[0].Line)
}

func TestPreviewAgainstPinnedSnapshot(t *testing.T) {
	f := setup(t)

	snap, err := f.snapshots.Create(orgCtx())
	require.NoError(t, err)

	_, err = f.catalog.Update(orgCtx(), catalogdomain.UpdateItemRequest{ID: f.labor.ID.String(), UnitPriceExclTax: nd("800")})
	require.NoError(t, err)

	req := domain.PreviewRequest{
		TaxDeductionEnabled: true,
		TaxDeductionPercent: nd("30"),
		Lines:               []domain.LineInput{{CatalogItemID: f.labor.ID.String(), Count: 1, DurationHours: nd("2")}},
	}

	live, err := f.svc.Preview(orgCtx(), req)
	require.NoError(t, err)
	assertDecimal(t, "2000", live.Totals.TotalInclTax)

	req.CatalogSnapshotID = snap.ID
	pinned, err := f.svc.Preview(orgCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, pinned.CatalogSnapshotID)
	assertDecimal(t, "1250", pinned.Totals.TotalInclTax)
	assertDecimal(t, "375", pinned.Totals.DeductionAmount)
	assertDecimal(t, "875", pinned.Totals.PayableAmount)
	assert.Empty(t, pinned.Warnings)

	req.CatalogSnapshotID = "missing"
	_, err = f.svc.Preview(orgCtx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidCatalogSnapshot)
}
