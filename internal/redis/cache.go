package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatlink/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"

	goredis "github.com/redis/go-redis/v9"
)

// Key pattern:
// - profile:{user_id} - public profile cache, short TTL

type CacheConfig struct {
	ProfileTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{ProfileTTL: 5 * time.Minute}
}

// ProfileCache keeps public profiles in Redis so chat-list population does
// not hit the user collection for every member of every chat. Misses and
// Redis failures both fall through to the store.
type ProfileCache struct {
	client *goredis.Client
	config CacheConfig
}

func NewProfileCache(client *goredis.Client, config CacheConfig) *ProfileCache {
	return &ProfileCache{client: client, config: config}
}

func (c *ProfileCache) Get(ctx context.Context, id primitive.ObjectID) (*domain.PublicProfile, bool) {
	raw, err := c.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p domain.PublicProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProfileCache) Set(ctx context.Context, p domain.PublicProfile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, profileKey(p.ID), raw, c.config.ProfileTTL).Err()
}

func (c *ProfileCache) Invalidate(ctx context.Context, id primitive.ObjectID) error {
	err := c.client.Del(ctx, profileKey(id)).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return err
	}
	return nil
}

func profileKey(id primitive.ObjectID) string {
	return fmt.Sprintf("profile:%s", id.Hex())
}
