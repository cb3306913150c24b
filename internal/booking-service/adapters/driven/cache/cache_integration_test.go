//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb, err := Connect(ctx, &config.Redisconfig{Addr: fmt.Sprintf("%s:%d", host, port.Int())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCheckoutStore(t *testing.T) {
	rdb := startRedis(t)
	store := NewCheckoutStore(rdb)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, myerrors.ErrCheckoutExpired)

	pickup := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := model.Checkout{
		ID:             "c1",
		UserID:         "u1",
		BookingID:      "b1",
		Driver:         model.Driver{ID: "1", Name: "Rahul Singh", Price: 599},
		Step:           model.StepPayment,
		Phase:          model.PhaseEditing,
		DurationHours:  6,
		PickupDateTime: &pickup,
		Payment:        model.PaymentDetails{Method: model.PaymentUPI, UPIID: "r@upi"},
	}
	require.NoError(t, store.Save(ctx, c, time.Minute))

	got, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StepPayment, got.Step)
	assert.Equal(t, "r@upi", got.Payment.UPIID)
	assert.True(t, pickup.Equal(*got.PickupDateTime))

	ttl, err := rdb.TTL(ctx, checkoutPrefix+"c1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}

func TestTokenStore(t *testing.T) {
	rdb := startRedis(t)
	store := NewTokenStore(rdb)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.SaveResetToken(ctx, "reset-1", "u1", time.Minute))
	userID, err := store.ConsumeResetToken(ctx, "reset-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = store.ConsumeResetToken(ctx, "reset-1")
	assert.ErrorIs(t, err, myerrors.ErrInvalidToken)
}
