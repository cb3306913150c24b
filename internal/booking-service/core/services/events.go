package services

import (
	"context"
	"time"

	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

// publish sends an event and only logs on failure. Events never decide the
// outcome of the operation that raised them.
func publish(ctx context.Context, log mylogger.Logger, bus ports.IEventPublisher, key string, payload any) {
	if bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := bus.Publish(ctx, key, payload); err != nil {
		log.Error("cannot publish event", err, "routing_key", key)
		return
	}
	log.Debug("event published", "routing_key", key)
}
