package models

import (
	"time"

	"github.com/google/uuid"
)

// Generation stage constants. Each stage has its own prompt and its own
// projection onto the business draft.
const (
	StageBusinessName = "business_name"
	StageTagline      = "tagline"
	StageBio          = "bio"
	StageLogo         = "logo"
	StageCampaign     = "campaign"
)

// ValidStages contains all stages the generation pipeline can produce.
var ValidStages = []string{StageBusinessName, StageTagline, StageBio, StageLogo, StageCampaign}

// IsValidStage checks if the given stage is known to the pipeline.
func IsValidStage(stage string) bool {
	for _, s := range ValidStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Generation is one cached result of the AI pipeline: a (stage, inputs
// fingerprint) computation scoped to an owner, holding one or more
// candidate items. Within an owner and stage at most one generation
// carries PrimarySelection.
type Generation struct {
	ID               uuid.UUID         `json:"id"`
	SessionID        string            `json:"session_id,omitempty"`
	UserID           uuid.UUID         `json:"user_id,omitempty"`
	Stage            string            `json:"stage"`
	Fingerprint      string            `json:"fingerprint"`
	Model            string            `json:"model,omitempty"`
	PrimarySelection bool              `json:"primary_selection"`
	CreatedAt        time.Time         `json:"created_at"`
	Items            []*GenerationItem `json:"items"`
}

// GenerationItem is a single candidate inside a generation: one name
// option, one bio draft, one logo concept. Content is opaque generated
// payload. Within a generation at most one item carries Selected.
type GenerationItem struct {
	ID           uuid.UUID              `json:"id"`
	GenerationID uuid.UUID              `json:"generation_id"`
	Position     int                    `json:"position"`
	Content      map[string]interface{} `json:"content"`
	Selected     bool                   `json:"selected"`
	CreatedAt    time.Time              `json:"created_at"`
}
