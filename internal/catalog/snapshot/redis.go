package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "glazier:catalog_snapshot:"

type redisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *redisStore) Put(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	ttl := time.Until(snap.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, key(snap.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store catalog snapshot: %w", err)
	}
	return nil
}

func (r *redisStore) Get(ctx context.Context, id string) (Snapshot, error) {
	payload, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load catalog snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return snap, nil
}
