package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/fingerprint"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/llm"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/prompts"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/repositories"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/retry"
)

// fingerprintCacheTTL bounds the redis fingerprint index; postgres
// remains the source of truth after expiry.
const fingerprintCacheTTL = 24 * time.Hour

// GenerateRequest asks for candidates for one stage of the wizard.
// Model overrides the configured default when set.
type GenerateRequest struct {
	Owner  models.Owner
	Stage  string
	Inputs map[string]interface{}
	Model  string
}

// GenerateResult is a generation plus whether it came from the cache.
type GenerateResult struct {
	Generation *models.Generation `json:"generation"`
	Cached     bool               `json:"cached"`
}

// SelectRequest commits one generation (and optionally one of its items)
// as the owner's choice for a stage. BusinessID targets an existing
// draft; when nil the owner's draft is created on demand.
type SelectRequest struct {
	Owner        models.Owner
	GenerationID uuid.UUID
	ItemID       *uuid.UUID
	BusinessID   *uuid.UUID
}

// candidatesPayload is the JSON shape every stage prompt asks for.
type candidatesPayload struct {
	Candidates []map[string]interface{} `json:"candidates"`
}

// GenerationService runs the cached AI generation pipeline.
type GenerationService interface {
	// GenerateWithCache returns the cached generation for identical
	// inputs, invoking the LLM only on a fingerprint miss.
	GenerateWithCache(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
	// SelectGeneration records a selection and projects the selected
	// content onto the business draft, creating the draft when the
	// owner has none yet.
	SelectGeneration(ctx context.Context, req *SelectRequest) (*models.Generation, error)
}

type generationService struct {
	gens     repositories.GenerationRepository
	business repositories.BusinessRepository
	client   llm.LLMClient
	rdb      *redis.Client
	retryCfg *retry.Config
	temp     float64
	logger   *zap.Logger
}

// NewGenerationService creates a new generation service. rdb may be nil,
// which disables the redis fingerprint index.
func NewGenerationService(
	gens repositories.GenerationRepository,
	business repositories.BusinessRepository,
	client llm.LLMClient,
	rdb *redis.Client,
	temperature float64,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		gens:     gens,
		business: business,
		client:   client,
		rdb:      rdb,
		retryCfg: retry.DefaultConfig(),
		temp:     temperature,
		logger:   logger.Named("generation"),
	}
}

var _ GenerationService = (*generationService)(nil)

func (s *generationService) GenerateWithCache(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if req.Owner.IsZero() {
		return nil, apperrors.ErrMissingOwner
	}
	if !models.IsValidStage(req.Stage) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStage, req.Stage)
	}

	model := req.Model
	if model == "" {
		model = s.client.GetModel()
	}
	fp, err := fingerprint.Compute(req.Stage, model, req.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint inputs: %w", err)
	}

	if gen := s.cachedGeneration(ctx, req.Owner, req.Stage, fp); gen != nil {
		return &GenerateResult{Generation: gen, Cached: true}, nil
	}

	gen, err := s.generate(ctx, req.Owner, req.Stage, fp, model, req.Inputs)
	if err != nil {
		return nil, err
	}

	s.indexFingerprint(ctx, req.Owner, req.Stage, fp, gen.ID)

	return &GenerateResult{Generation: gen, Cached: false}, nil
}

// cachedGeneration checks redis then postgres for an existing generation.
// Any cache-layer failure degrades to a miss.
func (s *generationService) cachedGeneration(ctx context.Context, owner models.Owner, stage, fp string) *models.Generation {
	if s.rdb != nil {
		if idStr, err := s.rdb.Get(ctx, fingerprintKey(owner, stage, fp)).Result(); err == nil {
			if id, err := uuid.Parse(idStr); err == nil {
				if gen, err := s.gens.GetByID(ctx, id); err == nil && gen != nil {
					return gen
				}
			}
		}
	}

	gen, err := s.gens.GetByFingerprint(ctx, owner, stage, fp)
	if err != nil {
		s.logger.Warn("Fingerprint lookup failed, regenerating",
			zap.String("stage", stage), zap.Error(err))
		return nil
	}
	if gen != nil {
		s.indexFingerprint(ctx, owner, stage, fp, gen.ID)
	}
	return gen
}

func (s *generationService) generate(ctx context.Context, owner models.Owner, stage, fp, model string, inputs map[string]interface{}) (*models.Generation, error) {
	system, user, ok := prompts.Build(stage, inputs)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStage, stage)
	}

	var response string
	err := retry.DoIfRetryable(ctx, s.retryCfg, func() error {
		var callErr error
		response, callErr = s.client.GenerateResponseWithModel(ctx, user, system, s.temp, model)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrGenerationFailed, err)
	}

	payload, err := llm.ParseJSONResponse[candidatesPayload](response)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %s", apperrors.ErrGenerationFailed, err)
	}
	if len(payload.Candidates) == 0 {
		return nil, fmt.Errorf("%w: response contained no candidates", apperrors.ErrGenerationFailed)
	}

	gen := &models.Generation{
		SessionID:   owner.SessionID,
		UserID:      owner.UserID,
		Stage:       stage,
		Fingerprint: fp,
		Model:       model,
	}
	for _, content := range payload.Candidates {
		gen.Items = append(gen.Items, &models.GenerationItem{Content: content})
	}

	if err := s.gens.Create(ctx, gen); err != nil {
		return nil, fmt.Errorf("failed to persist generation: %w", err)
	}

	s.logger.Info("Generated candidates",
		zap.String("owner", owner.Key()),
		zap.String("stage", stage),
		zap.Int("candidates", len(gen.Items)))

	return gen, nil
}

func (s *generationService) SelectGeneration(ctx context.Context, req *SelectRequest) (*models.Generation, error) {
	if req.Owner.IsZero() {
		return nil, apperrors.ErrMissingOwner
	}

	stage, content, err := s.gens.Select(ctx, req.Owner, req.GenerationID, req.ItemID)
	if err != nil {
		return nil, err
	}

	if content != nil {
		if update := projectionFor(stage, content); !update.IsZero() {
			businessID := req.BusinessID
			if businessID == nil {
				// The draft is created lazily on the first projected write.
				draft, err := s.business.EnsureForOwner(ctx, req.Owner)
				if err != nil {
					return nil, fmt.Errorf("failed to ensure business draft: %w", err)
				}
				businessID = &draft.ID
			}
			if err := s.business.ApplyBranding(ctx, *businessID, update); err != nil {
				return nil, fmt.Errorf("failed to project selection onto business: %w", err)
			}
		}
	}

	gen, err := s.gens.GetByID(ctx, req.GenerationID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload generation: %w", err)
	}
	if gen == nil {
		return nil, apperrors.ErrNotFound
	}
	return gen, nil
}

// projectionFor maps a stage's selected content onto business-draft
// fields. Stages without a projection return an empty update.
func projectionFor(stage string, content map[string]interface{}) *models.BrandingUpdate {
	switch stage {
	case models.StageBusinessName:
		return &models.BrandingUpdate{Name: contentString(content, "name", "text")}
	case models.StageTagline:
		return &models.BrandingUpdate{Tagline: contentString(content, "tagline", "text")}
	case models.StageBio:
		return &models.BrandingUpdate{Bio: contentString(content, "bio", "text")}
	case models.StageLogo:
		return &models.BrandingUpdate{
			LogoURL:    contentString(content, "url", "logo_url"),
			LogoPrompt: contentString(content, "prompt"),
		}
	default:
		return &models.BrandingUpdate{}
	}
}

// contentString returns the first non-empty string under the given keys.
func contentString(content map[string]interface{}, keys ...string) *string {
	for _, key := range keys {
		if v, ok := content[key].(string); ok && v != "" {
			return &v
		}
	}
	return nil
}

// indexFingerprint is a best-effort write to the redis fingerprint index.
func (s *generationService) indexFingerprint(ctx context.Context, owner models.Owner, stage, fp string, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, fingerprintKey(owner, stage, fp), id.String(), fingerprintCacheTTL).Err(); err != nil {
		s.logger.Debug("Failed to index fingerprint in redis", zap.Error(err))
	}
}

func fingerprintKey(owner models.Owner, stage, fp string) string {
	return "hub:gen:" + owner.Key() + ":" + stage + ":" + fp
}
