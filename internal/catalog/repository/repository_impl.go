package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/pkg/db/option"
	pkgrepo "github.com/smallbiznis/glazier/pkg/repository"
	"gorm.io/gorm"
)

var sortableColumns = []string{"name", "code", "created_at", "unit_price_excl_tax"}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func store(db *gorm.DB) pkgrepo.Repository[domain.Item] {
	return pkgrepo.ProvideStore[domain.Item](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return store(db).Create(ctx, item)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return store(db).Save(ctx, item)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Item, error) {
	return store(db).FindOne(ctx, &domain.Item{OrgID: orgID, ID: id})
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return store(db).Find(ctx, &domain.Item{OrgID: orgID}, option.WithWhere("id IN ?", ids))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListItemFilter) ([]*domain.Item, int64, error) {
	query := &domain.Item{OrgID: orgID}
	conds := []option.QueryOption{}
	if name := strings.ToLower(strings.TrimSpace(filter.Name)); name != "" {
		conds = append(conds, option.WithWhere("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", "%"+name+"%", "%"+name+"%"))
	}
	if filter.Active != nil {
		conds = append(conds, option.WithWhere("active = ?", *filter.Active))
	}
	if filter.Model != "" {
		conds = append(conds, option.WithWhere("pricing_model = ?", filter.Model))
	}

	s := store(db)
	total, err := s.Count(ctx, query, conds...)
	if err != nil {
		return nil, 0, err
	}

	opts := append(conds,
		option.WithSortBy(filter.SortBy, filter.SortDir, sortableColumns...),
		option.WithOrder("id asc"),
		option.WithLimit(filter.Limit),
		option.WithOffset(filter.Offset),
	)
	items, err := s.Find(ctx, query, opts...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
