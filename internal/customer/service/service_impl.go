package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/glazier/internal/audit/domain"
	"github.com/smallbiznis/glazier/internal/audit/masking"
	"github.com/smallbiznis/glazier/internal/customer/domain"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

// Swedish personal or coordination number, 10 or 12 digits with an optional
// separator before the last four.
var personalIdentityPattern = regexp.MustCompile(`^(\d{2})?\d{6}[-+]?\d{4}$`)

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidOrganization
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Address:          strings.TrimSpace(req.Address),
		PersonalIdentity: strings.TrimSpace(req.PersonalIdentity),
		Metadata:         datatypes.JSONMap(req.Metadata),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if customer.Metadata == nil {
		customer.Metadata = datatypes.JSONMap{}
	}
	if err := validate(customer); err != nil {
		return domain.Customer{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.audit(ctx, auditdomain.ActionCustomerCreate, customer)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if existing == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	updated := *existing
	assign(&updated.Name, req.Name)
	assign(&updated.Email, req.Email)
	assign(&updated.Phone, req.Phone)
	assign(&updated.Address, req.Address)
	assign(&updated.PersonalIdentity, req.PersonalIdentity)
	if req.Metadata != nil {
		updated.Metadata = datatypes.JSONMap(req.Metadata)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := validate(updated); err != nil {
		return domain.Customer{}, err
	}
	if err := s.repo.Update(ctx, s.db, &updated); err != nil {
		return domain.Customer{}, err
	}

	s.audit(ctx, auditdomain.ActionCustomerUpdate, updated)
	return updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.ListCustomerResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.Size()
	filter := domain.ListCustomerFilter{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Email:       strings.TrimSpace(req.Email),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Limit:       pageSize,
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeCursor(token)
		if err != nil {
			return domain.ListCustomerResponse{}, err
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{PageInfo: pageInfo, Customers: customers}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return domain.Customer{}, domain.ErrInvalidOrganization
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) audit(ctx context.Context, action string, customer domain.Customer) {
	if s.auditSvc == nil {
		return
	}
	targetID := customer.ID.String()
	metadata := masking.MaskFields(map[string]any{
		"name":              customer.Name,
		"personal_identity": customer.PersonalIdentity,
	}, "personal_identity")
	if err := s.auditSvc.AuditLog(ctx, &customer.OrgID, "", nil, action, "customer", &targetID, metadata); err != nil {
		s.log.Warn("audit failed", zap.String("action", action), zap.Error(err))
	}
}

func validate(c domain.Customer) error {
	if c.Name == "" {
		return domain.ErrInvalidName
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return domain.ErrInvalidEmail
	}
	if c.PersonalIdentity != "" && !personalIdentityPattern.MatchString(c.PersonalIdentity) {
		return domain.ErrInvalidPersonalIdentity
	}
	return nil
}

func assign(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func decodeCursor(token string) (*domain.CustomerCursor, error) {
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
	return &domain.CustomerCursor{ID: id, CreatedAt: createdAt}, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
