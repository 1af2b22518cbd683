package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/pricing"
	"gorm.io/gorm"
)

type starterItem struct {
	Code  string
	Name  string
	Price int64
	Model pricing.Model
}

var defaultVATRate = decimal.NewFromInt(25)

// starterCatalog is what a fresh organization gets to price its first orders.
var starterCatalog = []starterItem{
	{"float-glass-4mm", "Float glass 4 mm", 650, pricing.PerArea},
	{"laminated-glass-6mm", "Laminated glass 6 mm", 1200, pricing.PerArea},
	{"glazing-bead", "Glazing bead", 85, pricing.PerLength},
	{"sealant", "Glazing sealant", 149, pricing.PerUnit},
	{"installation-labor", "Installation labor", 550, pricing.PerDuration},
	{"travel", "Travel and call-out", 395, pricing.PerUnit},
}

// StarterCodes lists the item codes EnsureStarterCatalog creates.
func StarterCodes() []string {
	codes := make([]string, 0, len(starterCatalog))
	for _, item := range starterCatalog {
		codes = append(codes, item.Code)
	}
	return codes
}

// EnsureStarterCatalog seeds the starter catalog for an organization. Items
// whose code already exists are left untouched, so it is safe to rerun. It
// returns how many items were created.
func EnsureStarterCatalog(ctx context.Context, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}
	if orgID == 0 {
		return 0, catalogdomain.ErrInvalidOrganization
	}

	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created = 0
		for _, item := range starterCatalog {
			ok, err := ensureCatalogItemTx(ctx, tx, node, orgID, item)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func ensureCatalogItemTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, item starterItem) (bool, error) {
	var existing catalogdomain.Item
	err := tx.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, item.Code).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	priced := pricing.NewCatalogItem(decimal.NewFromInt(item.Price), defaultVATRate, item.Model)
	now := time.Now().UTC()
	row := catalogdomain.Item{
		ID:               node.Generate(),
		OrgID:            orgID,
		Code:             item.Code,
		Name:             item.Name,
		Unit:             catalogdomain.DefaultUnit(item.Model),
		UnitPriceExclTax: priced.UnitPriceExclTax,
		UnitPriceInclTax: priced.UnitPriceInclTax,
		VATRate:          priced.VATRate,
		PricingModel:     item.Model,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return false, err
	}
	return true, nil
}
