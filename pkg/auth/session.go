package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionCookieName is the name of the signed session-id companion cookie.
const SessionCookieName = "hub-session"

// sessionIDKey is the session value key holding the anonymous session id.
const sessionIDKey = "sid"

// SessionStore wraps a signed cookie store that echoes the anonymous
// session id back to browser clients. Clients that keep the id in local
// storage ignore it; clients without storage fall back to the cookie.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore initializes a cookie-based session store.
//
// The secret parameter signs session cookies. It can be any passphrase -
// it is SHA-256 hashed to derive a 32-byte key. The secret must be
// consistent across server restarts and load-balanced deployments.
func NewSessionStore(secret string) *SessionStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 365, // the anonymous session has no client-side expiry
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionStore{store: store}
}

// Echo writes the session id into the signed companion cookie.
// Failures are returned so callers can log them; a lost cookie only
// degrades return-visit detection for storage-less clients.
func (s *SessionStore) Echo(w http.ResponseWriter, r *http.Request, sessionID string) error {
	session, err := s.store.Get(r, SessionCookieName)
	if err != nil {
		// A tampered or stale cookie decodes to a fresh session; keep going.
		session, _ = s.store.New(r, SessionCookieName)
	}
	session.Values[sessionIDKey] = sessionID
	return session.Save(r, w)
}

// SessionID reads the session id from the companion cookie.
// Returns empty string when no valid cookie is present.
func (s *SessionStore) SessionID(r *http.Request) string {
	session, err := s.store.Get(r, SessionCookieName)
	if err != nil {
		return ""
	}
	id, _ := session.Values[sessionIDKey].(string)
	return id
}
