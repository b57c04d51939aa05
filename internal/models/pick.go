package models

import (
	"time"

	"github.com/google/uuid"
)

// PickOrigin tags a pick as either confirmed by the backend or still pending
// an optimistic local write. Reconciliation replaces a pending pick with its
// confirmed counterpart when the echo arrives.
type PickOrigin string

const (
	PickOriginConfirmed PickOrigin = "CONFIRMED"
	PickOriginPending   PickOrigin = "PENDING"
)

// Pick is an immutable record linking a team to a drafted Pokemon.
// PickOrder is the global 1-indexed sequence number within the draft.
type Pick struct {
	ID          uuid.UUID  `json:"id"`
	DraftID     uuid.UUID  `json:"draft_id"`
	TeamID      uuid.UUID  `json:"team_id"`
	PokemonID   string     `json:"pokemon_id"`
	PokemonName string     `json:"pokemon_name"`
	Cost        int        `json:"cost"`
	PickOrder   int        `json:"pick_order"`
	Round       int        `json:"round"`
	PickedAt    time.Time  `json:"picked_at"`
	Origin      PickOrigin `json:"origin"`
}
