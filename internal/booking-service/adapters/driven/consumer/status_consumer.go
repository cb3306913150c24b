package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/rabbitmq/amqp091-go"
)

const resubscribeInterval = 5 * time.Second

// Completer applies the trip-finished transition.
type Completer interface {
	MarkCompleted(ctx context.Context, bookingID string) error
}

// StatusConsumer turns booking.status.* messages from the dispatch side
// into booking transitions.
type StatusConsumer struct {
	mylog    mylogger.Logger
	consumer ports.IStatusConsumer
	bookings Completer
	retry    time.Duration
}

func New(mylog mylogger.Logger, consumer ports.IStatusConsumer, bookings Completer) *StatusConsumer {
	return &StatusConsumer{
		mylog:    mylog,
		consumer: consumer,
		bookings: bookings,
		retry:    resubscribeInterval,
	}
}

// Run subscribes once and then consumes in the background until ctx is
// done. A closed delivery channel is resubscribed after the broker comes
// back.
func (sc *StatusConsumer) Run(ctx context.Context) error {
	ch, err := sc.consumer.ConsumeStatus(ctx)
	if err != nil {
		return err
	}
	go func() {
		for sc.work(ctx, ch) {
			if ch = sc.resubscribe(ctx); ch == nil {
				return
			}
		}
	}()
	return nil
}

// work reports whether the delivery channel closed while ctx was still live.
func (sc *StatusConsumer) work(ctx context.Context, ch <-chan amqp091.Delivery) bool {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				sc.mylog.Action("status_consumer").Warn("delivery channel closed")
				return ctx.Err() == nil
			}
			sc.Handle(ctx, msg)
		case <-ctx.Done():
			return false
		}
	}
}

// resubscribe retries ConsumeStatus every retry interval. It returns nil
// once ctx is done.
func (sc *StatusConsumer) resubscribe(ctx context.Context) <-chan amqp091.Delivery {
	log := sc.mylog.Action("status_consumer_resubscribe")
	t := time.NewTicker(sc.retry)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			ch, err := sc.consumer.ConsumeStatus(ctx)
			if err != nil {
				log.Warn("cannot resubscribe to status queue", "error", err.Error())
				continue
			}
			log.Info("resubscribed to status queue")
			return ch
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle processes one delivery. Malformed messages and transitions the
// booking cannot take are dropped; other failures are requeued.
func (sc *StatusConsumer) Handle(ctx context.Context, msg amqp091.Delivery) {
	log := sc.mylog.Action("BookingStatusUpdate").With("routing_key", msg.RoutingKey)

	var m messagebrokerdto.BookingStatusUpdate
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		log.Warn("cannot decode status update", "error", err.Error())
		_ = msg.Nack(false, false)
		return
	}
	log = log.With("booking_id", m.BookingID, "status", m.Status)

	if !strings.EqualFold(m.Status, string(model.StatusCompleted)) {
		log.Debug("ignoring status update")
		_ = msg.Ack(false)
		return
	}

	err := sc.bookings.MarkCompleted(ctx, m.BookingID)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, myerrors.ErrValidation),
		errors.Is(err, myerrors.ErrNotFound),
		errors.Is(err, myerrors.ErrInvalidState):
		log.Warn("dropping status update", "error", err.Error())
		_ = msg.Nack(false, false)
	default:
		log.Error("cannot apply status update, requeueing", err)
		_ = msg.Nack(false, true)
	}
}
