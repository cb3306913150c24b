package ws

import (
	"context"
	"encoding/json"
	"time"

	websocketdto "driver-booking/internal/booking-service/core/domain/websocket_dto"
	"driver-booking/internal/mylogger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 4096
)

type Client struct {
	ctx    context.Context
	cancel context.CancelFunc
	conn   *websocket.Conn
	egress chan websocketdto.Event
	log    mylogger.Logger
}

func NewClient(ctx context.Context, conn *websocket.Conn, log mylogger.Logger) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ctx:    ctx,
		cancel: cancel,
		conn:   conn,
		egress: make(chan websocketdto.Event, 16),
		log:    log,
	}
}

// Send queues an event for the writer. Events for a closed client are
// dropped.
func (c *Client) Send(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("cannot encode websocket event", err, "type", eventType)
		return
	}
	select {
	case c.egress <- websocketdto.Event{Type: eventType, Data: data}:
	case <-c.ctx.Done():
	}
}

// ReadAuth waits for the first frame, which must be an auth message.
func (c *Client) ReadAuth(timeout time.Duration) (string, error) {
	c.conn.SetReadLimit(readLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}

	var ev websocketdto.Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return "", err
	}
	if ev.Type != websocketdto.TypeAuth {
		return "", ErrAuthExpected
	}
	var msg websocketdto.AuthMessage
	if err := json.Unmarshal(ev.Data, &msg); err != nil || msg.Token == "" {
		return "", ErrAuthExpected
	}
	return msg.Token, nil
}

// ReadMessages keeps the connection alive until the peer goes away. The
// session channel is push-only so incoming frames are ignored.
func (c *Client) ReadMessages() {
	defer c.cancel()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket closed unexpectedly", "error", err.Error())
			}
			return
		}
	}
}

func (c *Client) WriteMessages() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.drain()
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.log.Warn("cannot write websocket event", "error", err.Error())
				c.cancel()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}

// drain flushes events queued before the client was closed.
func (c *Client) drain() {
	for {
		select {
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) Close() {
	c.cancel()
}

func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}
