package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	"github.com/smallbiznis/glazier/internal/customer/domain"
	"github.com/smallbiznis/glazier/internal/customer/repository"
	"github.com/smallbiznis/glazier/internal/orgcontext"
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

func setupService(t *testing.T) (domain.Service, *auditMock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	audit := &auditMock{}
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		AuditSvc: audit,
	})
	return svc, audit
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), snowflake.ID(100))
}

func TestCreateCustomerMasksIdentityInAudit(t *testing.T) {
	svc, audit := setupService(t)
	audit.On("AuditLog", mock.Anything, mock.Anything, "", mock.Anything, auditdomain.ActionCustomerCreate, "customer", mock.Anything,
		mock.MatchedBy(func(md map[string]any) bool { return md["personal_identity"] == "****1234" }),
	).Return(nil).Once()

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{
		Name:             " Anna Svensson ",
		Email:            "anna@example.se",
		Address:          "Storgatan 1, Uppsala",
		PersonalIdentity: "19800101-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna Svensson", created.Name)
	assert.Equal(t, "19800101-1234", created.PersonalIdentity)

	got, err := svc.GetByID(orgCtx(), domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	audit.AssertExpectations(t)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name string
		ctx  context.Context
		req  domain.CreateCustomerRequest
		err  error
	}{
		{"missing org", context.Background(), domain.CreateCustomerRequest{Name: "A"}, domain.ErrInvalidOrganization},
		{"missing name", orgCtx(), domain.CreateCustomerRequest{Name: "  "}, domain.ErrInvalidName},
		{"bad email", orgCtx(), domain.CreateCustomerRequest{Name: "A", Email: "nope"}, domain.ErrInvalidEmail},
		{"bad identity", orgCtx(), domain.CreateCustomerRequest{Name: "A", PersonalIdentity: "1234"}, domain.ErrInvalidPersonalIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUpdateCustomer(t *testing.T) {
	svc, audit := setupService(t)
	audit.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: "Anna", Phone: "070-1234567"})
	require.NoError(t, err)

	address := "Ågatan 3"
	updated, err := svc.Update(orgCtx(), domain.UpdateCustomerRequest{ID: created.ID.String(), Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Ågatan 3", updated.Address)
	assert.Equal(t, "070-1234567", updated.Phone)

	_, err = svc.Update(orgCtx(), domain.UpdateCustomerRequest{ID: "999"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(orgCtx(), domain.UpdateCustomerRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	other := orgcontext.WithOrgID(context.Background(), snowflake.ID(200))
	_, err = svc.GetByID(other, domain.GetCustomerRequest{ID: created.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCustomers(t *testing.T) {
	svc, audit := setupService(t)
	audit.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	for _, name := range []string{"Anna", "Bertil", "Cecilia", "Annika"} {
		_, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	resp, err := svc.List(orgCtx(), domain.ListCustomerRequest{Name: "ann"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)

	page, err := svc.List(orgCtx(), domain.ListCustomerRequest{Pagination: pagination.Pagination{PageSize: 3}})
	require.NoError(t, err)
	assert.Len(t, page.Customers, 3)
	assert.True(t, page.HasMore)

	rest, err := svc.List(orgCtx(), domain.ListCustomerRequest{Pagination: pagination.Pagination{PageSize: 3, PageToken: page.NextPageToken}})
	require.NoError(t, err)
	assert.Len(t, rest.Customers, 1)
}
