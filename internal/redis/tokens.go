package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	chatlink_errors "chatlink/pkg/errors"

	goredis "github.com/redis/go-redis/v9"
)

// Key pattern:
// - refresh:{token_hash} - value is the owning user id, TTL bounds the
//   refresh window

// RefreshTokenStore keeps hashed refresh tokens in Redis. Expiry is enforced
// by the key TTL; a missing key means the token was revoked or timed out.
type RefreshTokenStore struct {
	client *goredis.Client
}

func NewRefreshTokenStore(client *goredis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

func (s *RefreshTokenStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(tokenHash), userID, ttl).Err()
}

func (s *RefreshTokenStore) Get(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", chatlink_errors.ErrUnauthorized
		}
		return "", err
	}
	return userID, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, refreshKey(tokenHash)).Err()
}

func refreshKey(tokenHash string) string {
	return fmt.Sprintf("refresh:%s", tokenHash)
}
