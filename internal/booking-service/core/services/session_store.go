package services

import (
	"context"
	"sync"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

// SessionStore holds the identity behind one access token. It checks the
// session once on Start and then follows change notifications until Stop.
// Sign-in and sign-out events only apply to the store's own token; user
// updates apply to every token of the user. The most recent event wins.
type SessionStore struct {
	auth  ports.IAuthProvider
	token string
	mylog mylogger.Logger

	mu       sync.RWMutex
	tokenID  string
	session  *model.Session
	loading  bool
	started  bool
	unsub    func()
	onChange func(model.SessionEventType, *model.Session)
}

func NewSessionStore(auth ports.IAuthProvider, accessToken string, mylog mylogger.Logger) *SessionStore {
	return &SessionStore{
		auth:    auth,
		token:   accessToken,
		mylog:   mylog,
		loading: true,
	}
}

// OnChange registers a callback fired after every state change. It must be
// set before Start.
func (s *SessionStore) OnChange(fn func(model.SessionEventType, *model.Session)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *SessionStore) Start(ctx context.Context) error {
	log := s.mylog.Action("SessionStart")

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	session, err := s.auth.GetSession(ctx, s.token)
	if err != nil {
		log.Error("cannot get session", err)
	}

	s.mu.Lock()
	s.session = session
	s.loading = false
	if session != nil {
		s.tokenID = session.TokenID
		s.unsub = s.auth.OnSessionChange(session.User.ID, s.handle)
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		if session != nil {
			fn(model.EventSignedIn, session)
		} else {
			fn(model.EventSignedOut, nil)
		}
	}
	return err
}

// Stop unsubscribes from change notifications. Calling it twice is safe.
func (s *SessionStore) Stop() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (s *SessionStore) handle(ev model.SessionEvent) {
	s.mu.Lock()
	switch ev.Type {
	case model.EventSignedIn, model.EventSignedOut:
		// sign-in and sign-out on other devices leave this token alone
		if ev.TokenID != "" && ev.TokenID != s.tokenID {
			s.mu.Unlock()
			return
		}
		if ev.Type == model.EventSignedOut {
			s.session = nil
		} else if ev.Session != nil {
			s.session = ev.Session
		}
	default:
		// user-wide changes replace the identity but keep this token
		if ev.Session != nil && s.session != nil {
			cp := *s.session
			cp.User = ev.Session.User
			s.session = &cp
		}
	}
	s.loading = false
	session := s.session
	fn := s.onChange
	s.mu.Unlock()

	s.mylog.Debug("session changed", "event", string(ev.Type), "user_id", ev.UserID)
	if fn != nil {
		fn(ev.Type, session)
	}
}

func (s *SessionStore) CurrentUser() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

func (s *SessionStore) CurrentSession() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// IsLoading is true only until the first session check resolves.
func (s *SessionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
