package bm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"

	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	statusQueue    = "booking_status"
	reconnInterval = 10
)

var ErrConnClosed = errors.New("connection is closed")

type RabbitMQ struct {
	ctx          context.Context
	cfg          *config.RabbitMqconfig
	mylog        mylogger.Logger
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	mu           *sync.Mutex
}

// New connects to RabbitMQ and declares the booking topic exchange.
func New(ctx context.Context, rabbitmqCfg *config.RabbitMqconfig, mylog mylogger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		ctx:   ctx,
		cfg:   rabbitmqCfg,
		mylog: mylog,
		mu:    &sync.Mutex{},
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return r, nil
}

// Publish sends payload as a persistent JSON message. A closed connection
// starts a background reconnect and fails this publish.
func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, payload any) error {
	mylog := r.mylog.Action("publish").With("routing_key", routingKey)

	ch, ok := r.channel()
	if !ok {
		mylog.Error("connection between rabbitmq is closed", ErrConnClosed)
		go r.reconnect(r.ctx)
		return ErrConnClosed
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return ch.PublishWithContext(ctx, r.cfg.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// ConsumeStatus binds the status queue to booking.status.* and starts a
// manual-ack consumer on it. A closed connection starts a background
// reconnect so the caller can retry.
func (r *RabbitMQ) ConsumeStatus(ctx context.Context) (<-chan amqp.Delivery, error) {
	ch, ok := r.channel()
	if !ok {
		go r.reconnect(r.ctx)
		return nil, ErrConnClosed
	}

	q, err := ch.QueueDeclare(statusQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, messagebrokerdto.BookingStatusPattern, r.cfg.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return ch.ConsumeWithContext(ctx, q.Name, "booking-service", false, false, false, false, nil)
}

func (r *RabbitMQ) IsAlive() bool {
	_, ok := r.channel()
	return ok
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}

func (r *RabbitMQ) channel() (*amqp.Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil || r.conn.IsClosed() || r.ch == nil || r.ch.IsClosed() {
		return nil, false
	}
	return r.ch, true
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.cfg.URL())
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(r.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.ch = ch
	r.mu.Unlock()
	return nil
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reconnecting = false
		r.mu.Unlock()
	}()

	t := time.NewTicker(time.Second * reconnInterval)
	defer t.Stop()
	mylog := r.mylog.Action("mb_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err == nil {
				mylog.Action("mb_reconnection_completed").Info("Successfully reconnected!")
				return
			}
			mylog.Info("rabbitmq failed to reconnect")
		case <-ctx.Done():
			return
		}
	}
}
