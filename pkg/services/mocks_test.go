package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/repositories"
)

// Hand-written repository mocks. Unset function fields behave like an
// empty database.

type mockStateRepo struct {
	UpsertFunc     func(ctx context.Context, state *models.OnboardingState) error
	GetByOwnerFunc func(ctx context.Context, owner models.Owner) (*models.OnboardingState, error)
	RekeyFunc      func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

var _ repositories.OnboardingStateRepository = (*mockStateRepo)(nil)

func (m *mockStateRepo) Upsert(ctx context.Context, state *models.OnboardingState) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, state)
	}
	return nil
}

func (m *mockStateRepo) GetByOwner(ctx context.Context, owner models.Owner) (*models.OnboardingState, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockStateRepo) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyFunc != nil {
		return m.RekeyFunc(ctx, sessionID, userID)
	}
	return 0, nil
}

type mockProfileRepo struct {
	UpsertFunc     func(ctx context.Context, profile *models.SessionProfile) error
	GetByOwnerFunc func(ctx context.Context, owner models.Owner) (*models.SessionProfile, error)
	RekeyFunc      func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

var _ repositories.ProfileRepository = (*mockProfileRepo)(nil)

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.SessionProfile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) GetByOwner(ctx context.Context, owner models.Owner) (*models.SessionProfile, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockProfileRepo) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyFunc != nil {
		return m.RekeyFunc(ctx, sessionID, userID)
	}
	return 0, nil
}

type mockGenerationRepo struct {
	CreateFunc           func(ctx context.Context, gen *models.Generation) error
	GetByFingerprintFunc func(ctx context.Context, owner models.Owner, stage, fingerprint string) (*models.Generation, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	ListByOwnerFunc      func(ctx context.Context, owner models.Owner) ([]*models.Generation, error)
	SelectFunc           func(ctx context.Context, owner models.Owner, generationID uuid.UUID, itemID *uuid.UUID) (string, map[string]interface{}, error)
	RekeyFunc            func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

var _ repositories.GenerationRepository = (*mockGenerationRepo)(nil)

func (m *mockGenerationRepo) Create(ctx context.Context, gen *models.Generation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, gen)
	}
	if gen.ID == uuid.Nil {
		gen.ID = uuid.New()
	}
	return nil
}

func (m *mockGenerationRepo) GetByFingerprint(ctx context.Context, owner models.Owner, stage, fingerprint string) (*models.Generation, error) {
	if m.GetByFingerprintFunc != nil {
		return m.GetByFingerprintFunc(ctx, owner, stage, fingerprint)
	}
	return nil, nil
}

func (m *mockGenerationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockGenerationRepo) ListByOwner(ctx context.Context, owner models.Owner) ([]*models.Generation, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockGenerationRepo) Select(ctx context.Context, owner models.Owner, generationID uuid.UUID, itemID *uuid.UUID) (string, map[string]interface{}, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, owner, generationID, itemID)
	}
	return "", nil, nil
}

func (m *mockGenerationRepo) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyFunc != nil {
		return m.RekeyFunc(ctx, sessionID, userID)
	}
	return 0, nil
}

type mockBusinessRepo struct {
	GetByOwnerFunc     func(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.BusinessDraft, error)
	EnsureForOwnerFunc func(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error)
	ApplyBrandingFunc  func(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error
	RekeyFunc          func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

var _ repositories.BusinessRepository = (*mockBusinessRepo)(nil)

func (m *mockBusinessRepo) GetByOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockBusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessDraft, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBusinessRepo) EnsureForOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error) {
	if m.EnsureForOwnerFunc != nil {
		return m.EnsureForOwnerFunc(ctx, owner)
	}
	return &models.BusinessDraft{ID: uuid.New(), SessionID: owner.SessionID, UserID: owner.UserID}, nil
}

func (m *mockBusinessRepo) ApplyBranding(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error {
	if m.ApplyBrandingFunc != nil {
		return m.ApplyBrandingFunc(ctx, id, update)
	}
	return nil
}

func (m *mockBusinessRepo) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyFunc != nil {
		return m.RekeyFunc(ctx, sessionID, userID)
	}
	return 0, nil
}

type mockCatalogRepo struct {
	ListProductsByOwnerFunc  func(ctx context.Context, owner models.Owner) ([]*models.Product, error)
	ListCampaignsByOwnerFunc func(ctx context.Context, owner models.Owner) ([]*models.Campaign, error)
	RekeyProductsFunc        func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
	RekeyCampaignsFunc       func(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

var _ repositories.CatalogRepository = (*mockCatalogRepo)(nil)

func (m *mockCatalogRepo) ListProductsByOwner(ctx context.Context, owner models.Owner) ([]*models.Product, error) {
	if m.ListProductsByOwnerFunc != nil {
		return m.ListProductsByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListCampaignsByOwner(ctx context.Context, owner models.Owner) ([]*models.Campaign, error) {
	if m.ListCampaignsByOwnerFunc != nil {
		return m.ListCampaignsByOwnerFunc(ctx, owner)
	}
	return nil, nil
}

func (m *mockCatalogRepo) RekeyProducts(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyProductsFunc != nil {
		return m.RekeyProductsFunc(ctx, sessionID, userID)
	}
	return 0, nil
}

func (m *mockCatalogRepo) RekeyCampaigns(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	if m.RekeyCampaignsFunc != nil {
		return m.RekeyCampaignsFunc(ctx, sessionID, userID)
	}
	return 0, nil
}
