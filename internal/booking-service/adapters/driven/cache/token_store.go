package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/redis/go-redis/v9"
)

type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

// Revoke blocks a token id until its natural expiry.
func (ts *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ts.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (ts *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := ts.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (ts *TokenStore) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := ts.rdb.Set(ctx, resetPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken is single use: the key is read and deleted atomically.
func (ts *TokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	userID, err := ts.rdb.GetDel(ctx, resetPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", myerrors.ErrInvalidToken
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}
