package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// OnboardingStateRepository provides data access for onboarding snapshots.
type OnboardingStateRepository interface {
	// Upsert overwrites the owner's snapshot; at most one live row per owner.
	Upsert(ctx context.Context, state *models.OnboardingState) error
	// GetByOwner returns the owner's snapshot, or nil when none exists.
	GetByOwner(ctx context.Context, owner models.Owner) (*models.OnboardingState, error)
	// Rekey moves the session-scoped snapshot to the user id. When the
	// user already has a snapshot the session one is discarded instead
	// of moved, keeping the one-row-per-owner invariant.
	Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

// onboardingStateRepository implements OnboardingStateRepository using PostgreSQL.
type onboardingStateRepository struct {
	db *database.DB
}

// NewOnboardingStateRepository creates a new onboarding state repository.
func NewOnboardingStateRepository(db *database.DB) OnboardingStateRepository {
	return &onboardingStateRepository{db: db}
}

var _ OnboardingStateRepository = (*onboardingStateRepository)(nil)

func (r *onboardingStateRepository) Upsert(ctx context.Context, state *models.OnboardingState) error {
	owner := models.Owner{SessionID: state.SessionID, UserID: state.UserID}
	if owner.IsZero() {
		return fmt.Errorf("onboarding state has no owner")
	}

	now := time.Now()
	state.UpdatedAt = now
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
		state.CreatedAt = now
	}

	contextJSON, err := json.Marshal(state.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if state.Context == nil {
		contextJSON = []byte("{}")
	}

	// The conflict target depends on which identity owns the row; both
	// unique indexes are partial, so each branch names its own.
	conflict := `(session_id) WHERE session_id IS NOT NULL`
	if owner.IsUser() {
		conflict = `(user_id) WHERE user_id IS NOT NULL`
	}

	sessionID, userID := ownerColumns(owner)
	query := fmt.Sprintf(`
		INSERT INTO hub_onboarding_states (id, session_id, user_id, step, context, business_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT %s DO UPDATE
		SET step = EXCLUDED.step,
		    context = EXCLUDED.context,
		    business_id = COALESCE(EXCLUDED.business_id, hub_onboarding_states.business_id),
		    updated_at = EXCLUDED.updated_at`, conflict)

	_, err = r.db.Exec(ctx, query,
		state.ID, sessionID, userID, state.Step, contextJSON, state.BusinessID,
		state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert onboarding state: %w", err)
	}

	return nil
}

func (r *onboardingStateRepository) GetByOwner(ctx context.Context, owner models.Owner) (*models.OnboardingState, error) {
	sessionID, userID := ownerArgs(owner)
	query := `
		SELECT id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'),
		       step, context, business_id, created_at, updated_at
		FROM hub_onboarding_states
		WHERE session_id = $1 OR user_id = $2`

	row := r.db.QueryRow(ctx, query, sessionID, userID)

	var state models.OnboardingState
	var contextJSON []byte
	err := row.Scan(&state.ID, &state.SessionID, &state.UserID, &state.Step,
		&contextJSON, &state.BusinessID, &state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No snapshot yet
		}
		return nil, fmt.Errorf("failed to get onboarding state: %w", err)
	}

	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &state.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context: %w", err)
		}
	}

	return &state, nil
}

func (r *onboardingStateRepository) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	result, err := tx.Exec(ctx, `
		UPDATE hub_onboarding_states
		SET user_id = $2, session_id = NULL, updated_at = now()
		WHERE session_id = $1
		  AND NOT EXISTS (SELECT 1 FROM hub_onboarding_states WHERE user_id = $2)`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey onboarding state: %w", err)
	}
	moved := result.RowsAffected()

	// A leftover session row means the user already had a snapshot; the
	// session copy is superseded and dropped.
	if _, err := tx.Exec(ctx, `DELETE FROM hub_onboarding_states WHERE session_id = $1`, sessionID); err != nil {
		return 0, fmt.Errorf("failed to discard superseded onboarding state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return moved, nil
}
