package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"multipos/internal/dto"
	"multipos/internal/model"
)

const statusCacheKeyPrefix = "inventory:status:"

// statusStore is the slice of Redis the status cache uses. A miss is
// reported as redis.Nil.
type statusStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type redisStatusStore struct{ rdb *redis.Client }

func (r redisStatusStore) Get(ctx context.Context, key string) ([]byte, error) {
	return r.rdb.Get(ctx, key).Bytes()
}

func (r redisStatusStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r redisStatusStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (r redisStatusStore) Del(ctx context.Context, keys ...string) error {
	return r.rdb.Del(ctx, keys...).Err()
}

// StatusCache keeps getStatus results in Redis. It is best-effort: a nil
// client or any Redis error falls through to the database.
//
// Writers overwrite the entry with the committed status; readers only fill
// an empty key, so a read that loaded the row before a write committed can
// never replace the newer entry.
type StatusCache struct {
	store statusStore
	ttl   time.Duration
}

func NewStatusCache(rdb *redis.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &StatusCache{ttl: ttl}
	if rdb != nil {
		c.store = redisStatusStore{rdb: rdb}
	}
	return c
}

func statusCacheKey(id uuid.UUID) string { return statusCacheKeyPrefix + id.String() }

// statusOf derives the cached status of rec. rec.Product must be loaded for
// the threshold.
func statusOf(rec *model.InventoryRecord) *dto.StatusResponse {
	return &dto.StatusResponse{
		InventoryID: rec.ID.String(),
		Available:   rec.Available(),
		Status:      string(rec.Status()),
		Margin:      rec.Margin(),
	}
}

func (c *StatusCache) enabled() bool { return c != nil && c.store != nil }

func (c *StatusCache) Get(ctx context.Context, id uuid.UUID) (*dto.StatusResponse, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.store.Get(ctx, statusCacheKey(id))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("inventory_id", id.String()).Msg("status cache: get failed")
		}
		return nil, false
	}
	var resp dto.StatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// Fill stores resp only when no entry exists. Used on the read path.
func (c *StatusCache) Fill(ctx context.Context, id uuid.UUID, resp *dto.StatusResponse) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if _, err := c.store.SetNX(ctx, statusCacheKey(id), data, c.ttl); err != nil {
		log.Warn().Err(err).Str("inventory_id", id.String()).Msg("status cache: fill failed")
	}
}

// Store overwrites the entry of every record with its current status. Used
// after a committed write.
func (c *StatusCache) Store(ctx context.Context, recs ...*model.InventoryRecord) {
	if !c.enabled() {
		return
	}
	for _, rec := range recs {
		data, err := json.Marshal(statusOf(rec))
		if err != nil {
			continue
		}
		if err := c.store.Set(ctx, statusCacheKey(rec.ID), data, c.ttl); err != nil {
			log.Warn().Err(err).Str("inventory_id", rec.ID.String()).Msg("status cache: set failed")
			c.Invalidate(ctx, rec.ID)
		}
	}
}

// Invalidate drops the cached status of every id.
func (c *StatusCache) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if !c.enabled() || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = statusCacheKey(id)
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("status cache: invalidate failed")
	}
}
