package models

import (
	"github.com/google/uuid"
)

// AuctionStatus defines the status of an auction nomination.
type AuctionStatus string

const (
	AuctionStatusPending   AuctionStatus = "PENDING"
	AuctionStatusActive    AuctionStatus = "ACTIVE"
	AuctionStatusCompleted AuctionStatus = "COMPLETED"
	AuctionStatusCancelled AuctionStatus = "CANCELLED"
)

// Auction is a nomination in an auction-mode draft. At most one auction per
// draft is ACTIVE at a time; the store denormalizes that one for O(1) access.
// Bidding mechanics live outside this core; only the bookkeeping is here.
type Auction struct {
	ID                  uuid.UUID     `json:"id"`
	DraftID             uuid.UUID     `json:"draft_id"`
	PokemonID           string        `json:"pokemon_id"`
	PokemonName         string        `json:"pokemon_name"`
	NominatedByTeamID   uuid.UUID     `json:"nominated_by_team_id"`
	CurrentBid          int           `json:"current_bid"`
	CurrentBidderTeamID *uuid.UUID    `json:"current_bidder_team_id,omitempty"`
	Status              AuctionStatus `json:"status"`
}
