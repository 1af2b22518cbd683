// Package snapshot freezes an organization's catalog for the length of one
// editing session, so the live preview and the saved order price against the
// same catalog data.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/glazier/internal/pricing"
)

var (
	ErrNotFound            = errors.New("catalog_snapshot_not_found")
	ErrInvalidOrganization = errors.New("invalid_organization")
)

type Snapshot struct {
	ID        string                      `json:"id"`
	OrgID     snowflake.ID                `json:"organization_id"`
	CreatedAt time.Time                   `json:"created_at"`
	ExpiresAt time.Time                   `json:"expires_at"`
	Items     map[string]pricing.Snapshot `json:"items"`
}

// Catalog exposes the frozen items to the pricing engine.
func (s Snapshot) Catalog() pricing.Catalog {
	return pricing.SnapshotCatalog(s.Items)
}

// Store persists snapshots until they expire.
type Store interface {
	Put(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, id string) (Snapshot, error)
}
