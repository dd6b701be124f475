package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/auth"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/services"
)

// MigrateRequest for POST /api/onboarding/migrate
type MigrateRequest struct {
	SessionID string `json:"session_id"`
}

// MigrationHandler moves session-owned onboarding data onto the
// authenticated user at sign-up.
type MigrationHandler struct {
	migrationService services.MigrationService
	logger           *zap.Logger
}

// NewMigrationHandler creates a new migration handler.
func NewMigrationHandler(migrationService services.MigrationService, logger *zap.Logger) *MigrationHandler {
	return &MigrationHandler{
		migrationService: migrationService,
		logger:           logger,
	}
}

// RegisterRoutes registers the migration handler's routes on the given mux.
func (h *MigrationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/onboarding/migrate", authMiddleware.RequireAuth(h.Migrate))
}

// Migrate handles POST /api/onboarding/migrate
func (h *MigrationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.SessionID == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_session_id", "session_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	summary, err := h.migrationService.MigrateSession(r.Context(), req.SessionID, claims.UserID())
	if err != nil {
		// Migration failures are retried by the client on its next
		// sign-in; they never block authentication.
		h.logger.Error("Failed to migrate session",
			zap.String("user_id", claims.UserID().String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "migration_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
