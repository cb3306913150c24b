package model

import "time"

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Identity is the authenticated principal owned by the auth provider.
type Identity struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Provider     string         `json:"provider"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// MetaString returns a string user-metadata value, or "" when absent.
func (i *Identity) MetaString(key string) string {
	if i == nil || i.UserMetadata == nil {
		return ""
	}
	s, _ := i.UserMetadata[key].(string)
	return s
}

func (i *Identity) IsOAuth() bool {
	return i != nil && i.Provider != "" && i.Provider != ProviderEmail
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Identity  `json:"user"`
}

type SessionEventType string

const (
	EventSignedIn         SessionEventType = "SIGNED_IN"
	EventSignedOut        SessionEventType = "SIGNED_OUT"
	EventUserUpdated      SessionEventType = "USER_UPDATED"
	EventPasswordRecovery SessionEventType = "PASSWORD_RECOVERY"
)

// SessionEvent is a session-change notification. Session is nil on sign-out.
// TokenID names the access token a SIGNED_IN or SIGNED_OUT event is about;
// empty means every session of the user.
type SessionEvent struct {
	Type    SessionEventType
	UserID  string
	TokenID string
	Session *Session
}

// UserPatch is the payload of an UpdateCurrentUser call.
type UserPatch struct {
	Password string
	Metadata map[string]any
}
