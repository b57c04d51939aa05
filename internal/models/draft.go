package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftType defines the type of draft.
type DraftType string

const (
	DraftTypeSnake   DraftType = "SNAKE"
	DraftTypeAuction DraftType = "AUCTION"
)

// DraftStatus defines the lifecycle state of a draft session.
// Deletion is an explicit state so callers can distinguish a deleted
// draft from one that has not been loaded yet.
type DraftStatus string

const (
	DraftStatusSetup     DraftStatus = "SETUP"
	DraftStatusActive    DraftStatus = "ACTIVE"
	DraftStatusPaused    DraftStatus = "PAUSED"
	DraftStatusCompleted DraftStatus = "COMPLETED"
	DraftStatusDeleted   DraftStatus = "DELETED"
)

// DraftSettings holds per-draft configuration.
type DraftSettings struct {
	TeamCount         int    `json:"team_count"`
	MaxPokemonPerTeam int    `json:"max_pokemon_per_team"`
	TimePerPickSec    int    `json:"time_per_pick_sec"`
	BudgetPerTeam     int    `json:"budget_per_team"`
	FormatID          string `json:"format_id,omitempty"`
}

// Draft represents a draft session.
type Draft struct {
	ID          uuid.UUID     `json:"id"`
	RoomCode    string        `json:"room_code"`
	DraftType   DraftType     `json:"draft_type"`
	Status      DraftStatus   `json:"status"`
	CurrentTurn int           `json:"current_turn"` // 1-indexed overall turn number
	Settings    DraftSettings `json:"settings"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
