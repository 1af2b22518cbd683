package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/glazier/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pane struct {
	ID     int64 `gorm:"primaryKey"`
	OrgID  int64
	Name   string
	Active bool
}

func setup(t *testing.T) Repository[pane] {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pane{}))
	return ProvideStore[pane](db)
}

func TestStoreFindAndCount(t *testing.T) {
	ctx := context.Background()
	store := setup(t)

	for i, name := range []string{"float", "tempered", "laminated"} {
		require.NoError(t, store.Create(ctx, &pane{ID: int64(i + 1), OrgID: 1, Name: name, Active: true}))
	}
	require.NoError(t, store.Create(ctx, &pane{ID: 10, OrgID: 2, Name: "other"}))

	items, err := store.Find(ctx, &pane{OrgID: 1}, option.WithSortBy("name", "desc", "name"), option.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "tempered", items[0].Name)

	count, err := store.Count(ctx, &pane{OrgID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	missing, err := store.FindOne(ctx, &pane{OrgID: 3})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithSortByIgnoresUnknownColumns(t *testing.T) {
	ctx := context.Background()
	store := setup(t)
	require.NoError(t, store.Create(ctx, &pane{ID: 1, OrgID: 1, Name: "b"}))
	require.NoError(t, store.Create(ctx, &pane{ID: 2, OrgID: 1, Name: "a"}))

	items, err := store.Find(ctx, &pane{OrgID: 1}, option.WithSortBy("name; DROP TABLE panes", "asc", "name"), option.WithOrder("id asc"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
}
