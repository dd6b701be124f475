package models

import (
	"time"

	"github.com/google/uuid"
)

// FormContext is the serialized copy of the wizard's form data. The
// engine treats it as opaque; field validation is a UI concern.
type FormContext map[string]interface{}

// OnboardingState is the server-side snapshot of a visitor's wizard
// progress. At most one live row exists per owner; saves are upserts
// that overwrite the previous snapshot.
type OnboardingState struct {
	ID         uuid.UUID   `json:"id"`
	SessionID  string      `json:"session_id,omitempty"`
	UserID     uuid.UUID   `json:"user_id,omitempty"`
	Step       int         `json:"step"`
	Context    FormContext `json:"context"`
	BusinessID *uuid.UUID  `json:"business_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// SessionProfile is the lightweight profile row written opportunistically
// alongside the onboarding snapshot once the wizard has collected an
// email or display name.
type SessionProfile struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StateAggregate is everything the server knows about an owner, returned
// by the get-state operation. Fields are nil or empty when nothing exists
// yet; absence is not an error.
type StateAggregate struct {
	Profile     *SessionProfile  `json:"profile"`
	State       *OnboardingState `json:"state"`
	Business    *BusinessDraft   `json:"business"`
	Generations []*Generation    `json:"generations"`
	Products    []*Product       `json:"products"`
	Campaigns   []*Campaign      `json:"campaigns"`
}
