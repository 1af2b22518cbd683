package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListItemFilter struct {
	Name    string
	Active  *bool
	Model   string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	Update(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Item, error)
	FindByIDs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) ([]*Item, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListItemFilter) ([]*Item, int64, error)
}
