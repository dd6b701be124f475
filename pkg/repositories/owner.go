// Package repositories provides PostgreSQL data access for the hub engine.
package repositories

import (
	"github.com/google/uuid"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// ownerArgs converts an Owner into the ($sessionID, $userID) argument
// pair used by the shared "(session_id = $n OR user_id = $m)" predicate.
// Unset identities become NULL, which never matches a row.
func ownerArgs(o models.Owner) (interface{}, interface{}) {
	var sessionID interface{}
	if o.SessionID != "" {
		sessionID = o.SessionID
	}
	var userID interface{}
	if o.UserID != uuid.Nil {
		userID = o.UserID
	}
	return sessionID, userID
}

// ownerColumns converts an Owner into nullable column values for INSERT.
func ownerColumns(o models.Owner) (interface{}, interface{}) {
	return ownerArgs(o)
}
