package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"github.com/smallbiznis/glazier/internal/pricing"
	"go.uber.org/zap"
)

type Service struct {
	catalog catalogdomain.Service
	store   Store
	clock   clock.Clock
	ttl     time.Duration
	log     *zap.Logger
}

func NewService(catalog catalogdomain.Service, store Store, c clock.Clock, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		clock:   c,
		ttl:     ttl,
		log:     log.Named("catalog.snapshot"),
	}
}

// Create freezes the org's active catalog.
func (s *Service) Create(ctx context.Context) (Snapshot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return Snapshot{}, ErrInvalidOrganization
	}

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	items := make(map[string]pricing.Snapshot, len(catalog))
	for id, item := range catalog {
		items[id] = pricing.SnapshotOf(item)
	}

	now := s.clock.Now()
	snap := Snapshot{
		ID:        ulid.Make().String(),
		OrgID:     orgID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Items:     items,
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return Snapshot{}, err
	}

	s.log.Debug("catalog snapshot created",
		zap.String("snapshot_id", snap.ID),
		zap.Int("items", len(items)),
	)
	return snap, nil
}

// Get returns a snapshot owned by the org in ctx. Snapshots of other
// organizations are reported as missing.
func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return Snapshot{}, ErrInvalidOrganization
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Snapshot{}, ErrNotFound
	}

	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.OrgID != orgID {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}
