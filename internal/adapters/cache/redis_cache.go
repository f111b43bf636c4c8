package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// RedisGroupCache shares permission groups between instances. Redis failures
// degrade to cache misses; the store stays the source of truth.
type RedisGroupCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ portsrepo.PermissionGroupCache = (*RedisGroupCache)(nil)

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisGroupCache stores groups under "<prefix>:group:<id>" for ttl.
func NewRedisGroupCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisGroupCache {
	if prefix == "" {
		prefix = "backoffice"
	}
	return &RedisGroupCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisGroupCache) key(groupID string) string {
	return fmt.Sprintf("%s:group:%s", c.prefix, groupID)
}

// genKey has no TTL so a generation outlives every cached copy it guards.
func (c *RedisGroupCache) genKey(groupID string) string {
	return c.key(groupID) + ":gen"
}

var errStaleFill = errors.New("permission group changed during fill")

func (c *RedisGroupCache) Get(ctx context.Context, groupID string) (*domain.PermissionGroup, bool) {
	raw, err := c.client.Get(ctx, c.key(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Permission group cache read failed",
			slog.String("group_id", groupID), slog.String("error", err.Error()))
		return nil, false
	}
	var group domain.PermissionGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		c.Invalidate(ctx, groupID)
		return nil, false
	}
	return &group, true
}

// getter is satisfied by both clients and transactions.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, key string) (uint64, error) {
	gen, err := cmd.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisGroupCache) Generation(ctx context.Context, groupID string) (uint64, bool) {
	gen, err := readGeneration(ctx, c.client, c.genKey(groupID))
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Permission group generation read failed",
			slog.String("group_id", groupID), slog.String("error", err.Error()))
		return 0, false
	}
	return gen, true
}

// Set writes under WATCH on the generation key, so a concurrent Invalidate
// aborts the fill.
func (c *RedisGroupCache) Set(ctx context.Context, group domain.PermissionGroup, gen uint64) bool {
	raw, err := json.Marshal(group)
	if err != nil {
		return false
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, c.genKey(group.ID))
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(group.ID), raw, c.ttl)
			return nil
		})
		return err
	}, c.genKey(group.ID))
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		return false
	default:
		middleware.GetLoggerFromCtx(ctx).WarnContext(ctx, "Permission group cache write failed",
			slog.String("group_id", group.ID), slog.String("error", err.Error()))
		return false
	}
}

// Invalidate bumps the generation and deletes the key in one transaction. A
// failure is logged; the entry then lives until its TTL.
func (c *RedisGroupCache) Invalidate(ctx context.Context, groupID string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(groupID))
		pipe.Del(ctx, c.key(groupID))
		return nil
	})
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).ErrorContext(ctx, "Permission group cache invalidation failed",
			slog.String("group_id", groupID), slog.String("error", err.Error()))
	}
}
