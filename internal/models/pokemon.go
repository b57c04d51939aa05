package models

// PokemonTier is one row of the format's tier sheet: the draft cost assigned
// to a Pokemon species. PokemonID is an opaque species identifier.
type PokemonTier struct {
	PokemonID string `json:"pokemon_id"`
	Name      string `json:"name"`
	Tier      string `json:"tier"`
	Cost      int    `json:"cost"`
}
