package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/leaselink/leaselink/pkg/errors"
)

const keyPrefix = "reset:"

// ResetTokenStore implements repository.ResetTokenStore using Redis.
// Tokens expire automatically via the key TTL, so an expired token behaves
// exactly like an unknown one.
type ResetTokenStore struct {
	client *redis.Client
}

// NewResetTokenStore creates a new Redis-backed reset token store.
func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// Save stores a reset token mapped to the user ID with the given TTL.
func (s *ResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	key := keyPrefix + token

	if err := s.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set reset token: %w", err)
	}

	return nil
}

// Consume atomically retrieves and deletes the token, returning the user ID it
// was issued for. GETDEL guarantees a token can only be redeemed once even
// under concurrent reset attempts.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	key := keyPrefix + token

	userID, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("reset token", token)
		}
		return "", fmt.Errorf("redis getdel reset token: %w", err)
	}

	return userID, nil
}
