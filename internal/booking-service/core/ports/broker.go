package ports

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

type IEventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

type IStatusConsumer interface {
	// ConsumeStatus delivers messages routed with booking.status.*.
	ConsumeStatus(ctx context.Context) (<-chan amqp.Delivery, error)
}
