// Package option holds composable query modifiers for repository lookups.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryFunc func(db *gorm.DB) *gorm.DB

func (f queryFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func WithLimit(limit int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

// WithSortBy orders by column when it is in allowed. Unknown columns are
// ignored so user input never reaches the ORDER BY clause.
func WithSortBy(column, direction string, allowed ...string) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		column = strings.ToLower(strings.TrimSpace(column))
		permitted := false
		for _, a := range allowed {
			if a == column {
				permitted = true
				break
			}
		}
		if !permitted {
			return db
		}
		dir := "asc"
		if strings.EqualFold(strings.TrimSpace(direction), "desc") {
			dir = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s", column, dir))
	})
}

func WithOrder(clause string) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(clause)
	})
}

// WithWhere adds a raw condition, e.g. WithWhere("name LIKE ?", "%pane%").
func WithWhere(query string, args ...any) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
