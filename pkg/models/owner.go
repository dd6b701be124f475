// Package models contains domain types for the hub engine.
package models

import "github.com/google/uuid"

// Owner identifies who a row belongs to: an anonymous browser session
// before sign-up, or a user account after migration. Exactly one of the
// two fields is expected to be set.
type Owner struct {
	SessionID string
	UserID    uuid.UUID
}

// SessionOwner returns an Owner keyed by an anonymous session token.
func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// UserOwner returns an Owner keyed by an authenticated user id.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: userID}
}

// IsUser reports whether this owner is an authenticated user.
func (o Owner) IsUser() bool {
	return o.UserID != uuid.Nil
}

// IsZero reports whether neither identity is set.
func (o Owner) IsZero() bool {
	return o.SessionID == "" && o.UserID == uuid.Nil
}

// Key returns a stable string form used for cache keys and log fields.
func (o Owner) Key() string {
	if o.IsUser() {
		return "user:" + o.UserID.String()
	}
	return "session:" + o.SessionID
}
