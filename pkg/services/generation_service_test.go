package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/llm"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

func newGenerationService(gens *mockGenerationRepo, business *mockBusinessRepo, client llm.LLMClient) GenerationService {
	return NewGenerationService(gens, business, client, nil, 0.9, zap.NewNop())
}

func TestGenerateWithCache_CacheHit(t *testing.T) {
	cached := &models.Generation{
		ID:    uuid.New(),
		Stage: models.StageBusinessName,
		Items: []*models.GenerationItem{{Content: map[string]interface{}{"name": "Glowberry"}}},
	}

	gens := &mockGenerationRepo{
		GetByFingerprintFunc: func(ctx context.Context, owner models.Owner, stage, fingerprint string) (*models.Generation, error) {
			return cached, nil
		},
	}
	client := llm.NewMockLLMClient()
	svc := newGenerationService(gens, &mockBusinessRepo{}, client)

	result, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner:  models.SessionOwner("sess-1"),
		Stage:  models.StageBusinessName,
		Inputs: map[string]interface{}{"idea": "candle shop"},
	})

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, cached.ID, result.Generation.ID)
	assert.Equal(t, 0, client.GenerateResponseCalls, "cache hit must not invoke the LLM")
}

func TestGenerateWithCache_CacheMissGeneratesAndPersists(t *testing.T) {
	var created *models.Generation
	gens := &mockGenerationRepo{
		CreateFunc: func(ctx context.Context, gen *models.Generation) error {
			gen.ID = uuid.New()
			created = gen
			return nil
		},
	}

	client := llm.NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{"candidates": [{"name": "Glowberry", "reason": "warm"}, {"name": "Wickhaven", "reason": "playful"}]}`, nil
	}

	svc := newGenerationService(gens, &mockBusinessRepo{}, client)

	result, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner:  models.SessionOwner("sess-1"),
		Stage:  models.StageBusinessName,
		Inputs: map[string]interface{}{"idea": "candle shop"},
	})

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, client.GenerateResponseCalls)

	require.NotNil(t, created)
	assert.Equal(t, models.StageBusinessName, created.Stage)
	assert.Equal(t, "mock-model", created.Model)
	assert.NotEmpty(t, created.Fingerprint)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Glowberry", created.Items[0].Content["name"])
}

func TestGenerateWithCache_ModelOverride(t *testing.T) {
	var created *models.Generation
	gens := &mockGenerationRepo{
		CreateFunc: func(ctx context.Context, gen *models.Generation) error {
			gen.ID = uuid.New()
			created = gen
			return nil
		},
	}

	client := llm.NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{"candidates": [{"tagline": "Light up your day"}]}`, nil
	}

	svc := newGenerationService(gens, &mockBusinessRepo{}, client)

	_, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner:  models.SessionOwner("sess-1"),
		Stage:  models.StageTagline,
		Inputs: map[string]interface{}{"idea": "candle shop"},
		Model:  "fast-model",
	})

	require.NoError(t, err)
	assert.Equal(t, "fast-model", client.LastModel, "the override must reach the LLM call")
	require.NotNil(t, created)
	assert.Equal(t, "fast-model", created.Model)
}

func TestGenerateWithCache_UnknownStage(t *testing.T) {
	svc := newGenerationService(&mockGenerationRepo{}, &mockBusinessRepo{}, llm.NewMockLLMClient())

	_, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner: models.SessionOwner("sess-1"),
		Stage: "haiku",
	})

	assert.ErrorIs(t, err, apperrors.ErrUnknownStage)
}

func TestGenerateWithCache_MissingOwner(t *testing.T) {
	svc := newGenerationService(&mockGenerationRepo{}, &mockBusinessRepo{}, llm.NewMockLLMClient())

	_, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Stage: models.StageBio,
	})

	assert.ErrorIs(t, err, apperrors.ErrMissingOwner)
}

func TestGenerateWithCache_LLMFailureWrapsSentinel(t *testing.T) {
	client := llm.NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return "", errors.New("model overloaded")
	}

	created := false
	gens := &mockGenerationRepo{
		CreateFunc: func(ctx context.Context, gen *models.Generation) error {
			created = true
			return nil
		},
	}
	svc := newGenerationService(gens, &mockBusinessRepo{}, client)

	_, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner: models.SessionOwner("sess-1"),
		Stage: models.StageTagline,
	})

	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
	assert.False(t, created, "nothing may be persisted when generation fails")
}

func TestGenerateWithCache_EmptyCandidatesFails(t *testing.T) {
	client := llm.NewMockLLMClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
		return `{"candidates": []}`, nil
	}
	svc := newGenerationService(&mockGenerationRepo{}, &mockBusinessRepo{}, client)

	_, err := svc.GenerateWithCache(context.Background(), &GenerateRequest{
		Owner: models.SessionOwner("sess-1"),
		Stage: models.StageBio,
	})

	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
}

func TestSelectGeneration_ProjectsOntoBusiness(t *testing.T) {
	genID := uuid.New()
	itemID := uuid.New()
	businessID := uuid.New()

	gens := &mockGenerationRepo{
		SelectFunc: func(ctx context.Context, owner models.Owner, generationID uuid.UUID, id *uuid.UUID) (string, map[string]interface{}, error) {
			return models.StageBusinessName, map[string]interface{}{"name": "Glowberry"}, nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
			return &models.Generation{ID: genID, Stage: models.StageBusinessName, PrimarySelection: true}, nil
		},
	}

	var applied *models.BrandingUpdate
	business := &mockBusinessRepo{
		ApplyBrandingFunc: func(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error {
			assert.Equal(t, businessID, id)
			applied = update
			return nil
		},
	}

	svc := newGenerationService(gens, business, llm.NewMockLLMClient())

	gen, err := svc.SelectGeneration(context.Background(), &SelectRequest{
		Owner:        models.SessionOwner("sess-1"),
		GenerationID: genID,
		ItemID:       &itemID,
		BusinessID:   &businessID,
	})

	require.NoError(t, err)
	assert.True(t, gen.PrimarySelection)
	require.NotNil(t, applied)
	require.NotNil(t, applied.Name)
	assert.Equal(t, "Glowberry", *applied.Name)
}

func TestSelectGeneration_CreatesDraftWhenMissing(t *testing.T) {
	genID := uuid.New()
	draftID := uuid.New()

	gens := &mockGenerationRepo{
		SelectFunc: func(ctx context.Context, owner models.Owner, generationID uuid.UUID, id *uuid.UUID) (string, map[string]interface{}, error) {
			return models.StageTagline, map[string]interface{}{"tagline": "Light up your day"}, nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
			return &models.Generation{ID: genID, Stage: models.StageTagline, PrimarySelection: true}, nil
		},
	}

	ensured := 0
	var applied *models.BrandingUpdate
	business := &mockBusinessRepo{
		EnsureForOwnerFunc: func(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error) {
			ensured++
			assert.Equal(t, "sess-1", owner.SessionID)
			return &models.BusinessDraft{ID: draftID, SessionID: owner.SessionID}, nil
		},
		ApplyBrandingFunc: func(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error {
			assert.Equal(t, draftID, id)
			applied = update
			return nil
		},
	}

	svc := newGenerationService(gens, business, llm.NewMockLLMClient())

	_, err := svc.SelectGeneration(context.Background(), &SelectRequest{
		Owner:        models.SessionOwner("sess-1"),
		GenerationID: genID,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, ensured, "a missing draft is created before projecting")
	require.NotNil(t, applied)
	require.NotNil(t, applied.Tagline)
	assert.Equal(t, "Light up your day", *applied.Tagline)
}

func TestSelectGeneration_UnknownStageSkipsProjection(t *testing.T) {
	genID := uuid.New()
	itemID := uuid.New()
	businessID := uuid.New()

	gens := &mockGenerationRepo{
		SelectFunc: func(ctx context.Context, owner models.Owner, generationID uuid.UUID, id *uuid.UUID) (string, map[string]interface{}, error) {
			return "mystery_stage", map[string]interface{}{"text": "whatever"}, nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
			return &models.Generation{ID: genID, PrimarySelection: true}, nil
		},
	}

	business := &mockBusinessRepo{
		ApplyBrandingFunc: func(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error {
			t.Fatal("projection must not run for an unknown stage")
			return nil
		},
	}

	svc := newGenerationService(gens, business, llm.NewMockLLMClient())

	_, err := svc.SelectGeneration(context.Background(), &SelectRequest{
		Owner:        models.SessionOwner("sess-1"),
		GenerationID: genID,
		ItemID:       &itemID,
		BusinessID:   &businessID,
	})

	require.NoError(t, err)
}

func TestSelectGeneration_NotFound(t *testing.T) {
	gens := &mockGenerationRepo{
		SelectFunc: func(ctx context.Context, owner models.Owner, generationID uuid.UUID, id *uuid.UUID) (string, map[string]interface{}, error) {
			return "", nil, apperrors.ErrNotFound
		},
	}
	svc := newGenerationService(gens, &mockBusinessRepo{}, llm.NewMockLLMClient())

	_, err := svc.SelectGeneration(context.Background(), &SelectRequest{
		Owner:        models.SessionOwner("sess-1"),
		GenerationID: uuid.New(),
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectionFor_LogoFields(t *testing.T) {
	update := projectionFor(models.StageLogo, map[string]interface{}{
		"url":    "https://cdn.example.com/logo.png",
		"prompt": "minimalist candle flame",
	})

	require.NotNil(t, update.LogoURL)
	require.NotNil(t, update.LogoPrompt)
	assert.Equal(t, "https://cdn.example.com/logo.png", *update.LogoURL)
	assert.Equal(t, "minimalist candle flame", *update.LogoPrompt)
	assert.Nil(t, update.Name)
}
