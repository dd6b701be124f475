package handlers

import (
	"net/http"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/auth"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// resolveOwner works out who a request belongs to. An authenticated
// user wins; otherwise the caller-supplied session id is used, falling
// back to the signed companion cookie for storage-less clients. A zero
// Owner means the request carried no identity at all.
func resolveOwner(r *http.Request, sessions *auth.SessionStore, sessionID string) models.Owner {
	if claims, ok := auth.GetClaims(r.Context()); ok {
		if id := claims.UserID(); !models.UserOwner(id).IsZero() {
			return models.UserOwner(id)
		}
	}
	if sessionID != "" {
		return models.SessionOwner(sessionID)
	}
	if sessions != nil {
		if id := sessions.SessionID(r); id != "" {
			return models.SessionOwner(id)
		}
	}
	return models.Owner{}
}
