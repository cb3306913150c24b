package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/mylogger"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type fakeCompleter struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeCompleter) MarkCompleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

type fakeSource struct {
	ch chan amqp091.Delivery
}

func (f *fakeSource) ConsumeStatus(context.Context) (<-chan amqp091.Delivery, error) {
	return f.ch, nil
}

func delivery(body string, ack amqp091.Acknowledger) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: "booking.status.completed", Body: []byte(body)}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantCalls   int
		wantAck     bool
		wantRequeue bool
	}{
		{"completed", `{"booking_id":"b1","status":"completed"}`, nil, 1, true, false},
		{"other status ignored", `{"booking_id":"b1","status":"Ongoing"}`, nil, 0, true, false},
		{"malformed", `{`, nil, 0, false, false},
		{"invalid transition dropped", `{"booking_id":"b1","status":"Completed"}`, myerrors.ErrInvalidState, 1, false, false},
		{"unknown booking dropped", `{"booking_id":"b1","status":"Completed"}`, myerrors.ErrBookingNotFound, 1, false, false},
		{"transient failure requeued", `{"booking_id":"b1","status":"Completed"}`, errors.New("db down"), 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &ackRecorder{}
			bookings := &fakeCompleter{err: tt.err}
			sc := New(mylogger.Discard(), &fakeSource{}, bookings)

			sc.Handle(context.Background(), delivery(tt.body, ack))

			assert.Len(t, bookings.ids, tt.wantCalls)
			if tt.wantAck {
				assert.Equal(t, 1, ack.acks)
				assert.Zero(t, ack.nacks)
			} else {
				assert.Zero(t, ack.acks)
				assert.Equal(t, 1, ack.nacks)
				assert.Equal(t, tt.wantRequeue, ack.requeue)
			}
		})
	}
}

func TestRunStopsWithContext(t *testing.T) {
	src := &fakeSource{ch: make(chan amqp091.Delivery)}
	bookings := &fakeCompleter{}
	sc := New(mylogger.Discard(), src, bookings)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sc.Run(ctx))

	ack := &ackRecorder{}
	src.ch <- delivery(`{"booking_id":"b9","status":"Completed"}`, ack)
	cancel()

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acks == 1
	}, time.Second, 10*time.Millisecond)
	bookings.mu.Lock()
	assert.Equal(t, []string{"b9"}, bookings.ids)
	bookings.mu.Unlock()
}

// flakySource hands out one result per ConsumeStatus call, in order.
type flakySource struct {
	mu      sync.Mutex
	results []func() (<-chan amqp091.Delivery, error)
	calls   int
}

func (f *flakySource) ConsumeStatus(context.Context) (<-chan amqp091.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		return nil, errors.New("connection is closed")
	}
	return f.results[i]()
}

func TestRunResubscribesAfterChannelCloses(t *testing.T) {
	first := make(chan amqp091.Delivery)
	second := make(chan amqp091.Delivery, 1)
	src := &flakySource{results: []func() (<-chan amqp091.Delivery, error){
		func() (<-chan amqp091.Delivery, error) { return first, nil },
		func() (<-chan amqp091.Delivery, error) { return nil, errors.New("connection is closed") },
		func() (<-chan amqp091.Delivery, error) { return second, nil },
	}}
	bookings := &fakeCompleter{}
	sc := New(mylogger.Discard(), src, bookings)
	sc.retry = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, sc.Run(ctx))

	close(first)
	ack := &ackRecorder{}
	second <- delivery(`{"booking_id":"b7","status":"Completed"}`, ack)

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acks == 1
	}, 2*time.Second, 10*time.Millisecond)
	bookings.mu.Lock()
	assert.Equal(t, []string{"b7"}, bookings.ids)
	bookings.mu.Unlock()
	src.mu.Lock()
	assert.Equal(t, 3, src.calls)
	src.mu.Unlock()
}

func TestRunStopsResubscribingWithContext(t *testing.T) {
	first := make(chan amqp091.Delivery)
	src := &flakySource{results: []func() (<-chan amqp091.Delivery, error){
		func() (<-chan amqp091.Delivery, error) { return first, nil },
	}}
	sc := New(mylogger.Discard(), src, &fakeCompleter{})
	sc.retry = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sc.Run(ctx))
	close(first)
	cancel()

	time.Sleep(20 * time.Millisecond)
	src.mu.Lock()
	assert.Equal(t, 1, src.calls)
	src.mu.Unlock()
}
