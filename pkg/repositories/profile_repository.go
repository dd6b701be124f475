package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// ProfileRepository provides data access for lightweight session profiles.
type ProfileRepository interface {
	// Upsert writes the owner's profile. Empty incoming fields never
	// blank out values a previous save already captured.
	Upsert(ctx context.Context, profile *models.SessionProfile) error
	// GetByOwner returns the owner's profile, or nil when none exists.
	GetByOwner(ctx context.Context, owner models.Owner) (*models.SessionProfile, error)
	// Rekey moves the session-scoped profile to the user id, discarding
	// it when the user already has one.
	Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

type profileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *database.DB) ProfileRepository {
	return &profileRepository{db: db}
}

var _ ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) Upsert(ctx context.Context, profile *models.SessionProfile) error {
	owner := models.Owner{SessionID: profile.SessionID, UserID: profile.UserID}
	if owner.IsZero() {
		return fmt.Errorf("session profile has no owner")
	}

	now := time.Now()
	profile.UpdatedAt = now
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
		profile.CreatedAt = now
	}

	conflict := `(session_id) WHERE session_id IS NOT NULL`
	if owner.IsUser() {
		conflict = `(user_id) WHERE user_id IS NOT NULL`
	}

	sessionID, userID := ownerColumns(owner)
	query := fmt.Sprintf(`
		INSERT INTO hub_session_profiles (id, session_id, user_id, email, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT %s DO UPDATE
		SET email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE hub_session_profiles.email END,
		    display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE hub_session_profiles.display_name END,
		    updated_at = EXCLUDED.updated_at`, conflict)

	_, err := r.db.Exec(ctx, query,
		profile.ID, sessionID, userID, profile.Email, profile.DisplayName,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session profile: %w", err)
	}

	return nil
}

func (r *profileRepository) GetByOwner(ctx context.Context, owner models.Owner) (*models.SessionProfile, error) {
	sessionID, userID := ownerArgs(owner)
	query := `
		SELECT id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'::uuid),
		       email, display_name, created_at, updated_at
		FROM hub_session_profiles
		WHERE session_id = $1 OR user_id = $2`

	var profile models.SessionProfile
	err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(
		&profile.ID, &profile.SessionID, &profile.UserID,
		&profile.Email, &profile.DisplayName, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	result, err := tx.Exec(ctx, `
		UPDATE hub_session_profiles
		SET user_id = $2, session_id = NULL, updated_at = now()
		WHERE session_id = $1
		  AND NOT EXISTS (SELECT 1 FROM hub_session_profiles WHERE user_id = $2)`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey session profile: %w", err)
	}
	moved := result.RowsAffected()

	if _, err := tx.Exec(ctx, `DELETE FROM hub_session_profiles WHERE session_id = $1`, sessionID); err != nil {
		return 0, fmt.Errorf("failed to discard superseded session profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return moved, nil
}
