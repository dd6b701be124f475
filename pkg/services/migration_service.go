package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/repositories"
)

// MigrationService moves session-owned rows onto a user account at
// sign-up. Migration is idempotent: a repeat call finds nothing left
// under the session id and reports zeros.
type MigrationService interface {
	MigrateSession(ctx context.Context, sessionID string, userID uuid.UUID) (*models.MigrationSummary, error)
}

type migrationService struct {
	states   repositories.OnboardingStateRepository
	profiles repositories.ProfileRepository
	gens     repositories.GenerationRepository
	business repositories.BusinessRepository
	catalog  repositories.CatalogRepository
	logger   *zap.Logger
}

// NewMigrationService creates a new migration service.
func NewMigrationService(
	states repositories.OnboardingStateRepository,
	profiles repositories.ProfileRepository,
	gens repositories.GenerationRepository,
	business repositories.BusinessRepository,
	catalog repositories.CatalogRepository,
	logger *zap.Logger,
) MigrationService {
	return &migrationService{
		states:   states,
		profiles: profiles,
		gens:     gens,
		business: business,
		catalog:  catalog,
		logger:   logger.Named("migration"),
	}
}

var _ MigrationService = (*migrationService)(nil)

func (s *migrationService) MigrateSession(ctx context.Context, sessionID string, userID uuid.UUID) (*models.MigrationSummary, error) {
	if sessionID == "" || userID == uuid.Nil {
		return nil, apperrors.ErrMissingOwner
	}

	var summary models.MigrationSummary
	var err error

	// Each table re-keys independently; a failure mid-way leaves a
	// partially migrated session that the next call finishes.
	if summary.States, err = s.states.Rekey(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate onboarding state: %w", err)
	}
	if summary.Profiles, err = s.profiles.Rekey(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate session profile: %w", err)
	}
	if summary.Generations, err = s.gens.Rekey(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate generations: %w", err)
	}
	if summary.Businesses, err = s.business.Rekey(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate business drafts: %w", err)
	}
	if summary.Products, err = s.catalog.RekeyProducts(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate products: %w", err)
	}
	if summary.Campaigns, err = s.catalog.RekeyCampaigns(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to migrate campaigns: %w", err)
	}

	s.logger.Info("Migrated session to user",
		zap.String("user_id", userID.String()),
		zap.Int64("rows", summary.Total()))

	return &summary, nil
}
