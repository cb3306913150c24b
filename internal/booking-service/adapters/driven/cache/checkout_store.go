package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/redis/go-redis/v9"
)

// CheckoutStore keeps wizard drafts as JSON values that expire after the
// configured TTL. Each Save refreshes the TTL.
type CheckoutStore struct {
	rdb *redis.Client
}

func NewCheckoutStore(rdb *redis.Client) *CheckoutStore {
	return &CheckoutStore{rdb: rdb}
}

func (cs *CheckoutStore) Save(ctx context.Context, c model.Checkout, ttl time.Duration) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode checkout: %w", err)
	}
	if err := cs.rdb.Set(ctx, checkoutPrefix+c.ID, body, ttl).Err(); err != nil {
		return fmt.Errorf("save checkout: %w", err)
	}
	return nil
}

func (cs *CheckoutStore) Load(ctx context.Context, id string) (model.Checkout, error) {
	body, err := cs.rdb.Get(ctx, checkoutPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Checkout{}, myerrors.ErrCheckoutExpired
		}
		return model.Checkout{}, fmt.Errorf("load checkout: %w", err)
	}

	var c model.Checkout
	if err := json.Unmarshal(body, &c); err != nil {
		return model.Checkout{}, fmt.Errorf("decode checkout: %w", err)
	}
	return c, nil
}
