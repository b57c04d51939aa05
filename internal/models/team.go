package models

import (
	"github.com/google/uuid"
)

// Team represents one drafting team in a session. DraftOrder is the team's
// rank in the first round (1..N) and is stable for the life of the draft.
type Team struct {
	ID              uuid.UUID  `json:"id"`
	DraftID         uuid.UUID  `json:"draft_id"`
	Name            string     `json:"name"`
	DraftOrder      int        `json:"draft_order"`
	BudgetRemaining int        `json:"budget_remaining"`
	ParticipantID   *uuid.UUID `json:"participant_id,omitempty"`
}
