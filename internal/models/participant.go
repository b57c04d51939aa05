package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents a user's membership in a draft session.
// Online/LastSeenAt are owned by presence tracking; the store only carries
// them through.
type Participant struct {
	ID          uuid.UUID  `json:"id"`
	DraftID     uuid.UUID  `json:"draft_id"`
	UserID      uuid.UUID  `json:"user_id"`
	DisplayName string     `json:"display_name"`
	IsHost      bool       `json:"is_host"`
	IsAdmin     bool       `json:"is_admin"`
	IsSpectator bool       `json:"is_spectator"`
	Online      bool       `json:"online"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}
