package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/auth"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/services"
)

// GenerateRequest for POST /api/onboarding/generations
type GenerateRequest struct {
	SessionID string                 `json:"session_id,omitempty"`
	Stage     string                 `json:"stage"`
	Inputs    map[string]interface{} `json:"inputs,omitempty"`
	Model     string                 `json:"model,omitempty"`
}

// SelectGenerationRequest for POST /api/onboarding/generations/{gid}/select
type SelectGenerationRequest struct {
	SessionID  string     `json:"session_id,omitempty"`
	ItemID     *uuid.UUID `json:"item_id,omitempty"`
	BusinessID *uuid.UUID `json:"business_id,omitempty"`
}

// GenerationHandler handles generation pipeline HTTP requests.
type GenerationHandler struct {
	generationService services.GenerationService
	sessions          *auth.SessionStore
	logger            *zap.Logger
}

// NewGenerationHandler creates a new generation handler.
func NewGenerationHandler(
	generationService services.GenerationService,
	sessions *auth.SessionStore,
	logger *zap.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		sessions:          sessions,
		logger:            logger,
	}
}

// RegisterRoutes registers the generation handler's routes on the given mux.
func (h *GenerationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/onboarding/generations", authMiddleware.OptionalAuth(h.Generate))
	mux.HandleFunc("POST /api/onboarding/generations/{gid}/select", authMiddleware.OptionalAuth(h.Select))
}

// Generate handles POST /api/onboarding/generations
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
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

	result, err := h.generationService.GenerateWithCache(r.Context(), &services.GenerateRequest{
		Owner:  owner,
		Stage:  req.Stage,
		Inputs: req.Inputs,
		Model:  req.Model,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownStage) {
			if err := ErrorResponse(w, http.StatusBadRequest, "unknown_stage", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to generate candidates",
			zap.String("owner", owner.Key()),
			zap.String("stage", req.Stage),
			zap.Error(err))
		status := http.StatusInternalServerError
		code := "generation_failed"
		if !errors.Is(err, apperrors.ErrGenerationFailed) {
			code = "generate_failed"
		}
		if err := ErrorResponse(w, status, code, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Select handles POST /api/onboarding/generations/{gid}/select
func (h *GenerationHandler) Select(w http.ResponseWriter, r *http.Request) {
	generationID, err := uuid.Parse(r.PathValue("gid"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_generation_id", "Generation id must be a UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req SelectGenerationRequest
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

	gen, err := h.generationService.SelectGeneration(r.Context(), &services.SelectRequest{
		Owner:        owner,
		GenerationID: generationID,
		ItemID:       req.ItemID,
		BusinessID:   req.BusinessID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "generation_not_found", "Generation not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to select generation",
			zap.String("generation_id", generationID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "select_generation_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, gen); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
