package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/auth"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/services"
)

// SaveSessionRequest for POST /api/onboarding/session
type SaveSessionRequest struct {
	SessionID   string             `json:"session_id,omitempty"`
	Step        int                `json:"step"`
	Context     models.FormContext `json:"context,omitempty"`
	BusinessID  *uuid.UUID         `json:"business_id,omitempty"`
	Email       string             `json:"email,omitempty"`
	DisplayName string             `json:"display_name,omitempty"`
}

// SaveSessionResponse for POST /api/onboarding/session
type SaveSessionResponse struct {
	State *models.OnboardingState `json:"state"`
}

// OnboardingHandler handles onboarding snapshot HTTP requests.
type OnboardingHandler struct {
	onboardingService services.OnboardingService
	sessions          *auth.SessionStore
	logger            *zap.Logger
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(
	onboardingService services.OnboardingService,
	sessions *auth.SessionStore,
	logger *zap.Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		sessions:          sessions,
		logger:            logger,
	}
}

// RegisterRoutes registers the onboarding handler's routes on the given mux.
func (h *OnboardingHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/onboarding/session", authMiddleware.OptionalAuth(h.SaveSession))
	mux.HandleFunc("GET /api/onboarding/state", authMiddleware.OptionalAuth(h.GetState))
}

// SaveSession handles POST /api/onboarding/session
func (h *OnboardingHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	owner := resolveOwner(r, h.sessions, req.SessionID)
	if owner.IsZero() {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_owner", "A session_id or bearer token is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	state, err := h.onboardingService.SaveSession(r.Context(), &services.SaveSessionRequest{
		Owner:       owner,
		Step:        req.Step,
		Context:     req.Context,
		BusinessID:  req.BusinessID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.Error("Failed to save onboarding session",
			zap.String("owner", owner.Key()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "save_session_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Echo the session id into the signed cookie so storage-less clients
	// keep their identity across visits.
	if !owner.IsUser() {
		if err := h.sessions.Echo(w, r, owner.SessionID); err != nil {
			h.logger.Warn("Failed to set session cookie", zap.Error(err))
		}
	}

	if err := WriteJSON(w, http.StatusOK, SaveSessionResponse{State: state}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetState handles GET /api/onboarding/state
func (h *OnboardingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	owner := resolveOwner(r, h.sessions, r.URL.Query().Get("session_id"))
	if owner.IsZero() {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_owner", "A session_id or bearer token is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	aggregate, err := h.onboardingService.GetState(r.Context(), owner)
	if err != nil {
		h.logger.Error("Failed to load onboarding state",
			zap.String("owner", owner.Key()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_state_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, aggregate); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
