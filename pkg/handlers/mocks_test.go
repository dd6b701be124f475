package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/services"
)

// Hand-written service mocks driven by function fields.

type mockOnboardingService struct {
	SaveSessionFunc func(ctx context.Context, req *services.SaveSessionRequest) (*models.OnboardingState, error)
	GetStateFunc    func(ctx context.Context, owner models.Owner) (*models.StateAggregate, error)
}

var _ services.OnboardingService = (*mockOnboardingService)(nil)

func (m *mockOnboardingService) SaveSession(ctx context.Context, req *services.SaveSessionRequest) (*models.OnboardingState, error) {
	if m.SaveSessionFunc != nil {
		return m.SaveSessionFunc(ctx, req)
	}
	return &models.OnboardingState{SessionID: req.Owner.SessionID, UserID: req.Owner.UserID, Step: req.Step, Context: req.Context}, nil
}

func (m *mockOnboardingService) GetState(ctx context.Context, owner models.Owner) (*models.StateAggregate, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, owner)
	}
	return &models.StateAggregate{
		Generations: []*models.Generation{},
		Products:    []*models.Product{},
		Campaigns:   []*models.Campaign{},
	}, nil
}

type mockGenerationService struct {
	GenerateWithCacheFunc func(ctx context.Context, req *services.GenerateRequest) (*services.GenerateResult, error)
	SelectGenerationFunc  func(ctx context.Context, req *services.SelectRequest) (*models.Generation, error)
}

var _ services.GenerationService = (*mockGenerationService)(nil)

func (m *mockGenerationService) GenerateWithCache(ctx context.Context, req *services.GenerateRequest) (*services.GenerateResult, error) {
	if m.GenerateWithCacheFunc != nil {
		return m.GenerateWithCacheFunc(ctx, req)
	}
	return &services.GenerateResult{Generation: &models.Generation{ID: uuid.New(), Stage: req.Stage}}, nil
}

func (m *mockGenerationService) SelectGeneration(ctx context.Context, req *services.SelectRequest) (*models.Generation, error) {
	if m.SelectGenerationFunc != nil {
		return m.SelectGenerationFunc(ctx, req)
	}
	return &models.Generation{ID: req.GenerationID, PrimarySelection: true}, nil
}

type mockMigrationService struct {
	MigrateSessionFunc func(ctx context.Context, sessionID string, userID uuid.UUID) (*models.MigrationSummary, error)
}

var _ services.MigrationService = (*mockMigrationService)(nil)

func (m *mockMigrationService) MigrateSession(ctx context.Context, sessionID string, userID uuid.UUID) (*models.MigrationSummary, error) {
	if m.MigrateSessionFunc != nil {
		return m.MigrateSessionFunc(ctx, sessionID, userID)
	}
	return &models.MigrationSummary{}, nil
}
