package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// BusinessRepository provides data access for business drafts.
type BusinessRepository interface {
	// GetByOwner returns the owner's draft, or nil when none exists.
	GetByOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error)
	// GetByID returns a draft by id, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessDraft, error)
	// EnsureForOwner returns the owner's draft, creating an empty one
	// when the owner has none yet.
	EnsureForOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error)
	// ApplyBranding writes the non-nil fields of the update onto the draft.
	ApplyBranding(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error
	// Rekey moves all session-scoped drafts to the user id.
	Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

type businessRepository struct {
	db *database.DB
}

// NewBusinessRepository creates a new business repository.
func NewBusinessRepository(db *database.DB) BusinessRepository {
	return &businessRepository{db: db}
}

var _ BusinessRepository = (*businessRepository)(nil)

const businessColumns = `
	id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'::uuid),
	name, tagline, bio, logo_url, logo_prompt, brand_colors, stripe_connected, created_at, updated_at`

func (r *businessRepository) GetByOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error) {
	sessionID, userID := ownerArgs(owner)
	query := `
		SELECT ` + businessColumns + `
		FROM hub_business_drafts
		WHERE session_id = $1 OR user_id = $2
		ORDER BY created_at ASC
		LIMIT 1`

	draft, err := r.scanDraft(r.db.QueryRow(ctx, query, sessionID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business draft: %w", err)
	}
	return draft, nil
}

func (r *businessRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessDraft, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM hub_business_drafts
		WHERE id = $1`

	draft, err := r.scanDraft(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business draft: %w", err)
	}
	return draft, nil
}

func (r *businessRepository) EnsureForOwner(ctx context.Context, owner models.Owner) (*models.BusinessDraft, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("business draft has no owner")
	}

	draft, err := r.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}

	now := time.Now()
	draft = &models.BusinessDraft{
		ID:          uuid.New(),
		SessionID:   owner.SessionID,
		UserID:      owner.UserID,
		BrandColors: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sessionID, userID := ownerColumns(owner)
	_, err = r.db.Exec(ctx, `
		INSERT INTO hub_business_drafts (id, session_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		draft.ID, sessionID, userID, draft.CreatedAt, draft.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create business draft: %w", err)
	}

	return draft, nil
}

func (r *businessRepository) ApplyBranding(ctx context.Context, id uuid.UUID, update *models.BrandingUpdate) error {
	if update.IsZero() {
		return nil
	}

	result, err := r.db.Exec(ctx, `
		UPDATE hub_business_drafts
		SET name = COALESCE($2, name),
		    tagline = COALESCE($3, tagline),
		    bio = COALESCE($4, bio),
		    logo_url = COALESCE($5, logo_url),
		    logo_prompt = COALESCE($6, logo_prompt),
		    updated_at = now()
		WHERE id = $1`,
		id, update.Name, update.Tagline, update.Bio, update.LogoURL, update.LogoPrompt,
	)
	if err != nil {
		return fmt.Errorf("failed to apply branding: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("business draft %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *businessRepository) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE hub_business_drafts
		SET user_id = $2, session_id = NULL, updated_at = now()
		WHERE session_id = $1`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey business drafts: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *businessRepository) scanDraft(row pgx.Row) (*models.BusinessDraft, error) {
	var draft models.BusinessDraft
	err := row.Scan(&draft.ID, &draft.SessionID, &draft.UserID,
		&draft.Name, &draft.Tagline, &draft.Bio, &draft.LogoURL, &draft.LogoPrompt,
		&draft.BrandColors, &draft.StripeConnected, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &draft, nil
}
