package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/apperrors"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// GenerationRepository provides data access for cached AI generations.
type GenerationRepository interface {
	// Create persists a generation and all of its items atomically.
	Create(ctx context.Context, gen *models.Generation) error
	// GetByFingerprint returns the owner's cached generation for the
	// stage and fingerprint, items included, or nil on a cache miss.
	GetByFingerprint(ctx context.Context, owner models.Owner, stage, fingerprint string) (*models.Generation, error)
	// GetByID returns a generation with its items, or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	// ListByOwner returns all of the owner's generations, newest first,
	// items included.
	ListByOwner(ctx context.Context, owner models.Owner) ([]*models.Generation, error)
	// Select marks the generation as the primary selection for its
	// stage, clearing the flag from siblings first, and optionally marks
	// one of its items selected. Both flips happen in one transaction.
	// Returns the generation's stage and the selected item's content
	// (nil when no item was named) for downstream projection.
	Select(ctx context.Context, owner models.Owner, generationID uuid.UUID, itemID *uuid.UUID) (string, map[string]interface{}, error)
	// Rekey moves all session-scoped generations to the user id.
	Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

type generationRepository struct {
	db *database.DB
}

// NewGenerationRepository creates a new generation repository.
func NewGenerationRepository(db *database.DB) GenerationRepository {
	return &generationRepository{db: db}
}

var _ GenerationRepository = (*generationRepository)(nil)

func (r *generationRepository) Create(ctx context.Context, gen *models.Generation) error {
	owner := models.Owner{SessionID: gen.SessionID, UserID: gen.UserID}
	if owner.IsZero() {
		return fmt.Errorf("generation has no owner")
	}

	now := time.Now()
	if gen.ID == uuid.Nil {
		gen.ID = uuid.New()
	}
	gen.CreatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	sessionID, userID := ownerColumns(owner)
	_, err = tx.Exec(ctx, `
		INSERT INTO hub_generations (id, session_id, user_id, stage, fingerprint, model, primary_selection, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		gen.ID, sessionID, userID, gen.Stage, gen.Fingerprint, gen.Model,
		gen.PrimarySelection, gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	for i, item := range gen.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.GenerationID = gen.ID
		item.Position = i
		item.CreatedAt = now

		contentJSON, err := json.Marshal(item.Content)
		if err != nil {
			return fmt.Errorf("failed to marshal item content: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO hub_generation_items (id, generation_id, position, content, selected, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, item.GenerationID, item.Position, contentJSON, item.Selected, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert generation item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const generationColumns = `
	id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'::uuid),
	stage, fingerprint, model, primary_selection, created_at`

func (r *generationRepository) GetByFingerprint(ctx context.Context, owner models.Owner, stage, fingerprint string) (*models.Generation, error) {
	sessionID, userID := ownerArgs(owner)
	query := `
		SELECT ` + generationColumns + `
		FROM hub_generations
		WHERE (session_id = $1 OR user_id = $2) AND stage = $3 AND fingerprint = $4
		ORDER BY created_at DESC
		LIMIT 1`

	gen, err := r.scanGeneration(r.db.QueryRow(ctx, query, sessionID, userID, stage, fingerprint))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get generation by fingerprint: %w", err)
	}

	if err := r.loadItems(ctx, []*models.Generation{gen}); err != nil {
		return nil, err
	}

	return gen, nil
}

func (r *generationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	query := `
		SELECT ` + generationColumns + `
		FROM hub_generations
		WHERE id = $1`

	gen, err := r.scanGeneration(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	if err := r.loadItems(ctx, []*models.Generation{gen}); err != nil {
		return nil, err
	}

	return gen, nil
}

func (r *generationRepository) ListByOwner(ctx context.Context, owner models.Owner) ([]*models.Generation, error) {
	sessionID, userID := ownerArgs(owner)
	query := `
		SELECT ` + generationColumns + `
		FROM hub_generations
		WHERE session_id = $1 OR user_id = $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var generations []*models.Generation
	for rows.Next() {
		gen, err := r.scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, gen)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}

	if err := r.loadItems(ctx, generations); err != nil {
		return nil, err
	}

	return generations, nil
}

func (r *generationRepository) Select(ctx context.Context, owner models.Owner, generationID uuid.UUID, itemID *uuid.UUID) (string, map[string]interface{}, error) {
	sessionID, userID := ownerArgs(owner)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	// Lock the target row and verify ownership in one step.
	var stage string
	err = tx.QueryRow(ctx, `
		SELECT stage FROM hub_generations
		WHERE id = $1 AND (session_id = $2 OR user_id = $3)
		FOR UPDATE`,
		generationID, sessionID, userID).Scan(&stage)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil, apperrors.ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to lock generation: %w", err)
	}

	// Clear the stage's previous primary, then set the new one.
	_, err = tx.Exec(ctx, `
		UPDATE hub_generations SET primary_selection = false
		WHERE (session_id = $1 OR user_id = $2) AND stage = $3 AND primary_selection`,
		sessionID, userID, stage)
	if err != nil {
		return "", nil, fmt.Errorf("failed to clear primary selection: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE hub_generations SET primary_selection = true WHERE id = $1`, generationID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to set primary selection: %w", err)
	}

	var content map[string]interface{}
	if itemID != nil {
		_, err = tx.Exec(ctx, `
			UPDATE hub_generation_items SET selected = false
			WHERE generation_id = $1 AND selected`,
			generationID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to clear item selection: %w", err)
		}

		var contentJSON []byte
		err = tx.QueryRow(ctx, `
			UPDATE hub_generation_items SET selected = true
			WHERE id = $1 AND generation_id = $2
			RETURNING content`,
			*itemID, generationID).Scan(&contentJSON)
		if err != nil {
			if err == pgx.ErrNoRows {
				return "", nil, apperrors.ErrNotFound
			}
			return "", nil, fmt.Errorf("failed to select item: %w", err)
		}

		if err := json.Unmarshal(contentJSON, &content); err != nil {
			return "", nil, fmt.Errorf("failed to unmarshal item content: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stage, content, nil
}

func (r *generationRepository) Rekey(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE hub_generations
		SET user_id = $2, session_id = NULL
		WHERE session_id = $1`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey generations: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *generationRepository) scanGeneration(row pgx.Row) (*models.Generation, error) {
	var gen models.Generation
	err := row.Scan(&gen.ID, &gen.SessionID, &gen.UserID, &gen.Stage,
		&gen.Fingerprint, &gen.Model, &gen.PrimarySelection, &gen.CreatedAt)
	if err != nil {
		return nil, err
	}
	gen.Items = []*models.GenerationItem{}
	return &gen, nil
}

// loadItems attaches items to each generation in one query.
func (r *generationRepository) loadItems(ctx context.Context, generations []*models.Generation) error {
	if len(generations) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(generations))
	byID := make(map[uuid.UUID]*models.Generation, len(generations))
	for i, gen := range generations {
		ids[i] = gen.ID
		byID[gen.ID] = gen
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, generation_id, position, content, selected, created_at
		FROM hub_generation_items
		WHERE generation_id = ANY($1)
		ORDER BY generation_id, position`,
		ids)
	if err != nil {
		return fmt.Errorf("failed to load generation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.GenerationItem
		var contentJSON []byte
		err := rows.Scan(&item.ID, &item.GenerationID, &item.Position,
			&contentJSON, &item.Selected, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to scan generation item: %w", err)
		}
		if len(contentJSON) > 0 {
			if err := json.Unmarshal(contentJSON, &item.Content); err != nil {
				return fmt.Errorf("failed to unmarshal item content: %w", err)
			}
		}
		if gen, ok := byID[item.GenerationID]; ok {
			gen.Items = append(gen.Items, &item)
		}
	}
	return rows.Err()
}
