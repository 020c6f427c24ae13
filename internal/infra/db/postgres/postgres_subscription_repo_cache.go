package postgres

import (
	"context"
	"encoding/json"
	"time"

	"companion-marketplace/internal/domain/model"
	"companion-marketplace/internal/domain/ports/repository"
	"companion-marketplace/internal/infra/metrics"
	red "companion-marketplace/internal/infra/redis"
)

var _ repository.SubscriptionRepository = (*subscriptionRepoCacheDecorator)(nil)

// subscriptionRepoCacheDecorator caches the per-explorer subscription row,
// which is read on every connection request for the entitlement check.
// Transactional reads bypass the cache: a locking read must see the row.
type subscriptionRepoCacheDecorator struct {
	inner repository.SubscriptionRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewSubscriptionRepoCacheDecorator(inner repository.SubscriptionRepository, cache red.RedisClient, ttl time.Duration) repository.SubscriptionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &subscriptionRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func subscriptionKey(explorerID string) string { return "subscription:explorer:" + explorerID }

func (d *subscriptionRepoCacheDecorator) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	_ = d.cache.Del(ctx, subscriptionKey(s.ExplorerID))
	return d.inner.Upsert(ctx, tx, s)
}

func (d *subscriptionRepoCacheDecorator) FindByExplorer(ctx context.Context, tx repository.Tx, explorerID string) (*model.Subscription, error) {
	if tx != nil {
		return d.inner.FindByExplorer(ctx, tx, explorerID)
	}

	key := subscriptionKey(explorerID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("subscription", "hit")
		var sub model.Subscription
		if json.Unmarshal([]byte(val), &sub) == nil {
			return &sub, nil
		}
	}

	metrics.IncCacheRequest("subscription", "miss")
	sub, err := d.inner.FindByExplorer(ctx, tx, explorerID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		if bytes, err := json.Marshal(sub); err == nil {
			_ = d.cache.Set(ctx, key, bytes, d.ttl)
		}
	}
	return sub, nil
}

func (d *subscriptionRepoCacheDecorator) ListActiveExpired(ctx context.Context, tx repository.Tx, asOf time.Time, limit int) ([]*model.Subscription, error) {
	return d.inner.ListActiveExpired(ctx, tx, asOf, limit)
}

func (d *subscriptionRepoCacheDecorator) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	// The id does not carry the explorer, so the cached entry is left to its
	// TTL. Harmless: entitlement checks the validity window, and a
	// deactivated row has always passed its end date.
	return d.inner.Deactivate(ctx, tx, id)
}
