package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/database"
	"github.com/MOX7Ltd/spark-sidekick-launch-sub002/pkg/models"
)

// CatalogRepository provides read and migration access to the products
// and campaigns created during onboarding. Creation and editing live in
// the main catalog service, not here.
type CatalogRepository interface {
	ListProductsByOwner(ctx context.Context, owner models.Owner) ([]*models.Product, error)
	ListCampaignsByOwner(ctx context.Context, owner models.Owner) ([]*models.Campaign, error)
	// RekeyProducts moves all session-scoped products to the user id.
	RekeyProducts(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
	// RekeyCampaigns moves all session-scoped campaigns to the user id.
	RekeyCampaigns(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error)
}

type catalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *database.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

var _ CatalogRepository = (*catalogRepository)(nil)

func (r *catalogRepository) ListProductsByOwner(ctx context.Context, owner models.Owner) ([]*models.Product, error) {
	sessionID, userID := ownerArgs(owner)
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'::uuid),
		       business_id, name, description, price_cents, created_at, updated_at
		FROM hub_products
		WHERE session_id = $1 OR user_id = $2
		ORDER BY created_at ASC`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.BusinessID,
			&p.Name, &p.Description, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *catalogRepository) ListCampaignsByOwner(ctx context.Context, owner models.Owner) ([]*models.Campaign, error) {
	sessionID, userID := ownerArgs(owner)
	rows, err := r.db.Query(ctx, `
		SELECT id, COALESCE(session_id, ''), COALESCE(user_id, '00000000-0000-0000-0000-000000000000'::uuid),
		       business_id, name, channel, status, content, created_at
		FROM hub_campaigns
		WHERE session_id = $1 OR user_id = $2
		ORDER BY created_at ASC`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		var contentJSON []byte
		err := rows.Scan(&c.ID, &c.SessionID, &c.UserID, &c.BusinessID,
			&c.Name, &c.Channel, &c.Status, &contentJSON, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		if len(contentJSON) > 0 {
			if err := json.Unmarshal(contentJSON, &c.Content); err != nil {
				return nil, fmt.Errorf("failed to unmarshal campaign content: %w", err)
			}
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

func (r *catalogRepository) RekeyProducts(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE hub_products
		SET user_id = $2, session_id = NULL, updated_at = now()
		WHERE session_id = $1`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey products: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *catalogRepository) RekeyCampaigns(ctx context.Context, sessionID string, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE hub_campaigns
		SET user_id = $2, session_id = NULL
		WHERE session_id = $1`,
		sessionID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to rekey campaigns: %w", err)
	}
	return result.RowsAffected(), nil
}
