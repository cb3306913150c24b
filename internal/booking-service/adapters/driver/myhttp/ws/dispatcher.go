package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	websocketdto "driver-booking/internal/booking-service/core/domain/websocket_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/booking-service/core/services"
	"driver-booking/internal/mylogger"

	"github.com/gorilla/websocket"
)

const AuthTimeout = 5 * time.Second

var ErrAuthExpected = errors.New("first message must be an auth message with a token")

// ClientList is a set of connected clients.
type ClientList map[*Client]bool

// Dispatcher serves /ws/session: each connection authenticates once and
// then receives session_update events from its own SessionStore.
type Dispatcher struct {
	ctx      context.Context
	auth     ports.IAuthProvider
	upgrader websocket.Upgrader
	log      mylogger.Logger

	sync.RWMutex
	clients ClientList
}

func NewDispatcher(ctx context.Context, log mylogger.Logger, auth ports.IAuthProvider, allowedOrigins []string) *Dispatcher {
	return &Dispatcher{
		ctx:  ctx,
		auth: auth,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		clients: make(ClientList),
	}
}

func (d *Dispatcher) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("ws_session")

		conn, err := d.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("cannot upgrade", "error", err.Error())
			return
		}

		client := NewClient(d.ctx, conn, log)
		token, err := client.ReadAuth(AuthTimeout)
		if err != nil {
			log.Debug("websocket auth failed", "error", err.Error())
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(errorEvent(ErrAuthExpected.Error()))
			conn.Close()
			return
		}

		d.addClient(client)
		defer d.removeClient(client)
		go client.WriteMessages()

		store := services.NewSessionStore(d.auth, token, log)
		store.OnChange(func(t model.SessionEventType, s *model.Session) {
			client.Send(websocketdto.TypeSessionUpdate, sessionUpdate(t, s))
		})
		if err := store.Start(client.ctx); err != nil {
			log.Error("cannot start session store", err)
		}
		defer store.Stop()

		if store.CurrentSession() == nil {
			client.Close()
			return
		}

		go client.ReadMessages()
		<-client.Done()
	}
}

// Count returns the number of authenticated connections.
func (d *Dispatcher) Count() int {
	d.RLock()
	defer d.RUnlock()
	return len(d.clients)
}

func (d *Dispatcher) addClient(client *Client) {
	d.Lock()
	defer d.Unlock()
	d.clients[client] = true
}

func (d *Dispatcher) removeClient(client *Client) {
	d.Lock()
	defer d.Unlock()
	if _, ok := d.clients[client]; ok {
		client.Close()
		delete(d.clients, client)
	}
}

func sessionUpdate(t model.SessionEventType, s *model.Session) websocketdto.SessionUpdate {
	upd := websocketdto.SessionUpdate{Event: string(t)}
	if s != nil {
		u := s.User
		exp := s.ExpiresAt
		upd.User = &u
		upd.ExpiresAt = &exp
	}
	return upd
}

func errorEvent(msg string) websocketdto.Event {
	data, _ := json.Marshal(websocketdto.ErrorMessage{Message: msg})
	return websocketdto.Event{Type: websocketdto.TypeError, Data: data}
}

// checkOrigin allows requests without an Origin header and those from the
// configured origins. "*" allows everything.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
