package models

import (
	"github.com/google/uuid"
)

// WishlistItem is a participant's planned pick. Priority orders the list
// (lower = sooner). IsAvailable is derived state: it must always equal
// "no pick exists for this Pokemon in the draft", and the store enforces
// that on every pick mutation.
type WishlistItem struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	PokemonID     string    `json:"pokemon_id"`
	PokemonName   string    `json:"pokemon_name"`
	Priority      int       `json:"priority"`
	IsAvailable   bool      `json:"is_available"`
}
