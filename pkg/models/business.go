package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessDraft is the evolving business record that generation
// selections are projected onto. Created lazily on first write; becomes
// the live business row after sign-up.
type BusinessDraft struct {
	ID              uuid.UUID `json:"id"`
	SessionID       string    `json:"session_id,omitempty"`
	UserID          uuid.UUID `json:"user_id,omitempty"`
	Name            string    `json:"name,omitempty"`
	Tagline         string    `json:"tagline,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	LogoURL         string    `json:"logo_url,omitempty"`
	LogoPrompt      string    `json:"logo_prompt,omitempty"`
	BrandColors     []string  `json:"brand_colors,omitempty"`
	StripeConnected bool      `json:"stripe_connected"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BrandingUpdate carries the business-draft fields a selection can
// project onto. Nil fields are left untouched.
type BrandingUpdate struct {
	Name       *string
	Tagline    *string
	Bio        *string
	LogoURL    *string
	LogoPrompt *string
}

// IsZero reports whether the update would touch nothing.
func (u *BrandingUpdate) IsZero() bool {
	return u == nil || (u.Name == nil && u.Tagline == nil && u.Bio == nil &&
		u.LogoURL == nil && u.LogoPrompt == nil)
}

// Product is a catalog entry created during or after onboarding. The
// engine only touches products during state reads and migration.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   string     `json:"session_id,omitempty"`
	UserID      uuid.UUID  `json:"user_id,omitempty"`
	BusinessID  *uuid.UUID `json:"business_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PriceCents  int64      `json:"price_cents"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Campaign is a marketing campaign draft generated during onboarding.
// Like products, the engine only reads and migrates campaigns.
type Campaign struct {
	ID         uuid.UUID              `json:"id"`
	SessionID  string                 `json:"session_id,omitempty"`
	UserID     uuid.UUID              `json:"user_id,omitempty"`
	BusinessID *uuid.UUID             `json:"business_id,omitempty"`
	Name       string                 `json:"name"`
	Channel    string                 `json:"channel,omitempty"`
	Status     string                 `json:"status"`
	Content    map[string]interface{} `json:"content,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// MigrationSummary reports how many rows each table moved from a session
// owner to a user owner. All zeros means there was nothing left to
// migrate, which is a successful no-op.
type MigrationSummary struct {
	States      int64 `json:"states"`
	Profiles    int64 `json:"profiles"`
	Generations int64 `json:"generations"`
	Businesses  int64 `json:"businesses"`
	Products    int64 `json:"products"`
	Campaigns   int64 `json:"campaigns"`
}

// Total returns the total number of rows moved.
func (m MigrationSummary) Total() int64 {
	return m.States + m.Profiles + m.Generations + m.Businesses + m.Products + m.Campaigns
}
