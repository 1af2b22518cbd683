package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/internal/workorder/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	return insertLines(ctx, db, order.Lines)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	err := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ? AND id = ?", order.OrgID, order.ID).
		Updates(map[string]any{
			"customer_id":           order.CustomerID,
			"title":                 order.Title,
			"scheduled_start":       order.ScheduledStart,
			"scheduled_end":         order.ScheduledEnd,
			"address":               order.Address,
			"notes":                 order.Notes,
			"tax_deduction_enabled": order.TaxDeductionEnabled,
			"tax_deduction_percent": order.TaxDeductionPercent,
			"total_excl_tax":        order.TotalExclTax,
			"total_incl_tax":        order.TotalInclTax,
			"updated_at":            order.UpdatedAt,
		}).Error
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).
		Where("work_order_id = ?", order.ID).
		Delete(&domain.Line{}).Error
	if err != nil {
		return err
	}
	return insertLines(ctx, db, order.Lines)
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	return db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ? AND id = ?", order.OrgID, order.ID).
		Updates(map[string]any{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := db.WithContext(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListWorkOrderFilter) ([]*domain.WorkOrder, error) {
	var orders []*domain.WorkOrder
	stmt := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ScheduledFrom != nil {
		stmt = stmt.Where("scheduled_start >= ?", filter.ScheduledFrom.UTC())
	}
	if filter.ScheduledTo != nil {
		stmt = stmt.Where("scheduled_start <= ?", filter.ScheduledTo.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("((created_at < ?) OR (created_at = ? AND id < ?))",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ?", orgID).
		Count(&total).Error
	return total, err
}

func insertLines(ctx context.Context, db *gorm.DB, lines []domain.Line) error {
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}
