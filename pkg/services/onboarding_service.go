// Package services contains the business logic for the hub engine.
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

// SaveSessionRequest carries one snapshot of wizard progress.
type SaveSessionRequest struct {
	Owner       models.Owner
	Step        int
	Context     models.FormContext
	BusinessID  *uuid.UUID
	Email       string
	DisplayName string
}

// OnboardingService manages onboarding snapshots and state reads.
type OnboardingService interface {
	// SaveSession overwrites the owner's snapshot and opportunistically
	// records profile details when the request carries any.
	SaveSession(ctx context.Context, req *SaveSessionRequest) (*models.OnboardingState, error)
	// GetState returns everything known about the owner. Missing pieces
	// come back nil or empty, never as errors.
	GetState(ctx context.Context, owner models.Owner) (*models.StateAggregate, error)
}

type onboardingService struct {
	states   repositories.OnboardingStateRepository
	profiles repositories.ProfileRepository
	business repositories.BusinessRepository
	gens     repositories.GenerationRepository
	catalog  repositories.CatalogRepository
	logger   *zap.Logger
}

// NewOnboardingService creates a new onboarding service.
func NewOnboardingService(
	states repositories.OnboardingStateRepository,
	profiles repositories.ProfileRepository,
	business repositories.BusinessRepository,
	gens repositories.GenerationRepository,
	catalog repositories.CatalogRepository,
	logger *zap.Logger,
) OnboardingService {
	return &onboardingService{
		states:   states,
		profiles: profiles,
		business: business,
		gens:     gens,
		catalog:  catalog,
		logger:   logger.Named("onboarding"),
	}
}

var _ OnboardingService = (*onboardingService)(nil)

func (s *onboardingService) SaveSession(ctx context.Context, req *SaveSessionRequest) (*models.OnboardingState, error) {
	if req.Owner.IsZero() {
		return nil, apperrors.ErrMissingOwner
	}

	state := &models.OnboardingState{
		SessionID:  req.Owner.SessionID,
		UserID:     req.Owner.UserID,
		Step:       req.Step,
		Context:    req.Context,
		BusinessID: req.BusinessID,
	}
	if err := s.states.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save onboarding state: %w", err)
	}

	// The profile write is opportunistic: a failure loses nothing the
	// next save cannot recapture.
	if req.Email != "" || req.DisplayName != "" {
		profile := &models.SessionProfile{
			SessionID:   req.Owner.SessionID,
			UserID:      req.Owner.UserID,
			Email:       req.Email,
			DisplayName: req.DisplayName,
		}
		if err := s.profiles.Upsert(ctx, profile); err != nil {
			s.logger.Warn("Failed to save session profile",
				zap.String("owner", req.Owner.Key()),
				zap.Error(err))
		}
	}

	return state, nil
}

func (s *onboardingService) GetState(ctx context.Context, owner models.Owner) (*models.StateAggregate, error) {
	if owner.IsZero() {
		return nil, apperrors.ErrMissingOwner
	}

	state, err := s.states.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding state: %w", err)
	}

	profile, err := s.profiles.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load session profile: %w", err)
	}

	business, err := s.business.GetByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load business draft: %w", err)
	}

	generations, err := s.gens.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load generations: %w", err)
	}

	products, err := s.catalog.ListProductsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	campaigns, err := s.catalog.ListCampaignsByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaigns: %w", err)
	}

	if generations == nil {
		generations = []*models.Generation{}
	}
	if products == nil {
		products = []*models.Product{}
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}

	return &models.StateAggregate{
		Profile:     profile,
		State:       state,
		Business:    business,
		Generations: generations,
		Products:    products,
		Campaigns:   campaigns,
	}, nil
}
