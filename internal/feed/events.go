// Package feed ingests real-time draft updates and applies them to session
// stores. Updates arrive as envelopes carrying one entity collection (or a
// lifecycle signal) each; the dispatcher routes them to the matching store
// setter.
package feed

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies which collection (or lifecycle transition) an
// envelope carries.
type EventKind string

const (
	EventKindDraft        EventKind = "draft"
	EventKindTeams        EventKind = "teams"
	EventKindParticipants EventKind = "participants"
	EventKindPicks        EventKind = "picks"
	EventKindAuctions     EventKind = "auctions"
	EventKindWishlist     EventKind = "wishlist"
	EventKindTiers        EventKind = "tiers"
	EventKindSnapshot     EventKind = "snapshot"
	EventKindDraftDeleted EventKind = "draft_deleted"
)

// Envelope is the wire frame for one feed update.
type Envelope struct {
	ID        uuid.UUID       `json:"eventId"`
	DraftID   uuid.UUID       `json:"draftId"`
	RoomCode  string          `json:"roomCode"`
	Kind      EventKind       `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}
