package infrastructure

import (
	"context"
	"fmt"
	"time"

	"coinflip/domain/interfaces"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// itemLookup is satisfied by the qualifying item repository
type itemLookup interface {
	HasItem(ctx context.Context, owner, collectionID string) (bool, error)
}

// RepositoryOwnershipChecker answers ownership questions from the qualifying item table
type RepositoryOwnershipChecker struct {
	items itemLookup
}

// NewRepositoryOwnershipChecker wraps an item lookup as an OwnershipChecker
func NewRepositoryOwnershipChecker(items itemLookup) *RepositoryOwnershipChecker {
	return &RepositoryOwnershipChecker{items: items}
}

func (c *RepositoryOwnershipChecker) HasQualifyingItem(ctx context.Context, account, collectionID string) (bool, error) {
	return c.items.HasItem(ctx, account, collectionID)
}

// redisCommands is the subset of the go-redis client the cache uses
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedOwnershipChecker memoizes ownership answers in Redis.
// Cache failures fall through to the underlying checker.
type CachedOwnershipChecker struct {
	rdb   redisCommands
	next  interfaces.OwnershipChecker
	ttl   time.Duration
	label string
}

// ConnectRedis opens a client and verifies the server answers
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewCachedOwnershipChecker wraps next with a Redis cache
func NewCachedOwnershipChecker(rdb redisCommands, next interfaces.OwnershipChecker, ttl time.Duration) *CachedOwnershipChecker {
	return &CachedOwnershipChecker{
		rdb:   rdb,
		next:  next,
		ttl:   ttl,
		label: "coinflip:ownership",
	}
}

func (c *CachedOwnershipChecker) key(account, collectionID string) string {
	return fmt.Sprintf("%s:%s:%s", c.label, collectionID, account)
}

func (c *CachedOwnershipChecker) HasQualifyingItem(ctx context.Context, account, collectionID string) (bool, error) {
	key := c.key(account, collectionID)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case err != redis.Nil:
		log.WithFields(log.Fields{
			"key":   key,
			"error": err,
		}).Warn("Ownership cache read failed")
	}

	owns, err := c.next.HasQualifyingItem(ctx, account, collectionID)
	if err != nil {
		return false, err
	}

	value := "0"
	if owns {
		value = "1"
	}
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"error": err,
		}).Warn("Ownership cache write failed")
	}
	return owns, nil
}

// Invalidate drops the cached answer after an ownership change
func (c *CachedOwnershipChecker) Invalidate(ctx context.Context, account, collectionID string) error {
	if err := c.rdb.Del(ctx, c.key(account, collectionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ownership cache: %w", err)
	}
	return nil
}
