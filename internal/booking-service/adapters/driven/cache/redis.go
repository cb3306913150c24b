package cache

import (
	"context"
	"fmt"
	"time"

	"driver-booking/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	checkoutPrefix = "checkout:"
	revokedPrefix  = "revoked:"
	resetPrefix    = "reset:"
)

// Connect opens a client and checks it with a ping.
func Connect(ctx context.Context, cfg *config.Redisconfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
