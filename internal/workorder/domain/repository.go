package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	// Update rewrites the order row and replaces its lines.
	Update(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	UpdateStatus(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*WorkOrder, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListWorkOrderFilter) ([]*WorkOrder, error)
	Count(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
