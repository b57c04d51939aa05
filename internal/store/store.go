// Package store holds the canonical in-memory state of a single draft
// session: normalized entity tables, relationship indexes and the cached
// snake order. It is the only writer of that state; the real-time feed and
// user actions mutate it exclusively through its methods.
//
// Mutators called from feed handling never panic: on a stale or unknown ID
// they log a warning and return without mutating, because an escaped panic
// inside the feed handler would cost the whole subscription.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/draftorder"
	"github.com/draftdex/draftdex/internal/models"
)

// Store is the single mutable source of truth for one draft session.
// Construct one per session with New; there is no package-level instance.
type Store struct {
	mu       sync.RWMutex
	revision uint64

	draft *models.Draft

	teamsByID        map[uuid.UUID]models.Team
	teamIDs          []uuid.UUID
	participantsByID map[uuid.UUID]models.Participant
	participantIDs   []uuid.UUID
	picksByID        map[uuid.UUID]models.Pick
	pickIDs          []uuid.UUID
	auctionsByID     map[uuid.UUID]models.Auction
	auctionIDs       []uuid.UUID
	wishlistByID     map[uuid.UUID]models.WishlistItem
	wishlistIDs      []uuid.UUID
	tiersByID        map[string]models.PokemonTier
	tierIDs          []string

	// Denormalized: the at-most-one ACTIVE auction.
	currentAuctionID *uuid.UUID

	// Cached snake order, recomputed only when teams or rounds change.
	draftOrder []int

	// Relationship indexes. Every referenced ID must exist in the matching
	// by-ID table after any mutation.
	participantsByUserID    map[uuid.UUID]uuid.UUID
	teamsByParticipantID    map[uuid.UUID]uuid.UUID
	teamsByRank             map[int]uuid.UUID
	picksByTeamID           map[uuid.UUID][]uuid.UUID
	wishlistByParticipantID map[uuid.UUID][]uuid.UUID
}

// New returns an empty session store.
func New() *Store {
	s := &Store{}
	s.initLocked()
	return s
}

func (s *Store) initLocked() {
	s.draft = nil
	s.teamsByID = make(map[uuid.UUID]models.Team)
	s.teamIDs = nil
	s.participantsByID = make(map[uuid.UUID]models.Participant)
	s.participantIDs = nil
	s.picksByID = make(map[uuid.UUID]models.Pick)
	s.pickIDs = nil
	s.auctionsByID = make(map[uuid.UUID]models.Auction)
	s.auctionIDs = nil
	s.wishlistByID = make(map[uuid.UUID]models.WishlistItem)
	s.wishlistIDs = nil
	s.tiersByID = make(map[string]models.PokemonTier)
	s.tierIDs = nil
	s.currentAuctionID = nil
	s.draftOrder = nil
	s.participantsByUserID = make(map[uuid.UUID]uuid.UUID)
	s.teamsByParticipantID = make(map[uuid.UUID]uuid.UUID)
	s.teamsByRank = make(map[int]uuid.UUID)
	s.picksByTeamID = make(map[uuid.UUID][]uuid.UUID)
	s.wishlistByParticipantID = make(map[uuid.UUID][]uuid.UUID)
}

// Reset returns the store to its empty initial state. Used when leaving a
// draft session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.revision++
}

// Revision returns the monotonically increasing mutation counter. Selectors
// key their memoization on it.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Draft returns a copy of the draft metadata, or nil when none is loaded.
func (s *Store) Draft() *models.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draft == nil {
		return nil
	}
	d := *s.draft
	return &d
}

// DraftOrder returns a copy of the cached snake order.
func (s *Store) DraftOrder() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.draftOrder))
	copy(out, s.draftOrder)
	return out
}

// Team looks up a team by ID.
func (s *Store) Team(id uuid.UUID) (models.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teamsByID[id]
	return t, ok
}

// TeamByRank resolves a team from its draft-order rank.
func (s *Store) TeamByRank(rank int) (models.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.teamsByRank[rank]
	if !ok {
		return models.Team{}, false
	}
	t, ok := s.teamsByID[id]
	return t, ok
}

// Teams returns all teams in snapshot order.
func (s *Store) Teams() []models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Team, 0, len(s.teamIDs))
	for _, id := range s.teamIDs {
		out = append(out, s.teamsByID[id])
	}
	return out
}

// Participant looks up a participant by ID.
func (s *Store) Participant(id uuid.UUID) (models.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participantsByID[id]
	return p, ok
}

// ParticipantByUserID resolves a participant from the owning user ID.
func (s *Store) ParticipantByUserID(userID uuid.UUID) (models.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.participantsByUserID[userID]
	if !ok {
		return models.Participant{}, false
	}
	p, ok := s.participantsByID[id]
	return p, ok
}

// TeamForUser performs the two-hop traversal user -> participant -> team.
func (s *Store) TeamForUser(userID uuid.UUID) (models.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participantID, ok := s.participantsByUserID[userID]
	if !ok {
		return models.Team{}, false
	}
	teamID, ok := s.teamsByParticipantID[participantID]
	if !ok {
		return models.Team{}, false
	}
	t, ok := s.teamsByID[teamID]
	return t, ok
}

// Pick looks up a pick by ID.
func (s *Store) Pick(id uuid.UUID) (models.Pick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.picksByID[id]
	return p, ok
}

// PickCount returns the total number of picks in the draft.
func (s *Store) PickCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pickIDs)
}

// PicksForTeam returns a team's picks ordered by pick order ascending.
func (s *Store) PicksForTeam(teamID uuid.UUID) []models.Pick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.picksByTeamID[teamID]
	out := make([]models.Pick, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.picksByID[id])
	}
	return out
}

// PickCountForTeam returns the number of picks a team has made.
func (s *Store) PickCountForTeam(teamID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picksByTeamID[teamID])
}

// PokemonPicked reports whether any pick in the draft references the given
// Pokemon.
func (s *Store) PokemonPicked(pokemonID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pokemonPickedLocked(pokemonID)
}

func (s *Store) pokemonPickedLocked(pokemonID string) bool {
	for _, p := range s.picksByID {
		if p.PokemonID == pokemonID {
			return true
		}
	}
	return false
}

// WishlistForParticipant returns a participant's wishlist ordered by
// priority ascending.
func (s *Store) WishlistForParticipant(participantID uuid.UUID) []models.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.wishlistByParticipantID[participantID]
	out := make([]models.WishlistItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.wishlistByID[id])
	}
	return out
}

// WishlistItem looks up a wishlist item by ID.
func (s *Store) WishlistItem(id uuid.UUID) (models.WishlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wishlistByID[id]
	return w, ok
}

// CurrentAuction returns the single ACTIVE auction, if any.
func (s *Store) CurrentAuction() (models.Auction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentAuctionID == nil {
		return models.Auction{}, false
	}
	a, ok := s.auctionsByID[*s.currentAuctionID]
	return a, ok
}

// Auction looks up an auction by ID.
func (s *Store) Auction(id uuid.UUID) (models.Auction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.auctionsByID[id]
	return a, ok
}

// PokemonTier looks up a tier-sheet row by Pokemon ID.
func (s *Store) PokemonTier(pokemonID string) (models.PokemonTier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tiersByID[pokemonID]
	return t, ok
}

// internal helpers — all assume s.mu is held for writing.

func (s *Store) recomputeDraftOrderLocked() {
	if s.draft == nil {
		s.draftOrder = nil
		return
	}
	s.draftOrder = draftorder.Compute(len(s.teamIDs), s.draft.Settings.MaxPokemonPerTeam)
}

// rebuildIndexesLocked rebuilds every relationship index from the entity
// tables. Snapshot ingress calls this wholesale because cross-references may
// be stale even in collections the snapshot did not touch.
func (s *Store) rebuildIndexesLocked() {
	s.rebuildTeamIndexesLocked()
	s.rebuildParticipantIndexesLocked()
	s.rebuildPickIndexLocked()
	s.rebuildWishlistIndexLocked()
	s.rebuildAuctionIndexLocked()
}

func (s *Store) rebuildTeamIndexesLocked() {
	s.teamsByRank = make(map[int]uuid.UUID, len(s.teamIDs))
	s.teamsByParticipantID = make(map[uuid.UUID]uuid.UUID, len(s.teamIDs))
	for _, id := range s.teamIDs {
		t := s.teamsByID[id]
		s.teamsByRank[t.DraftOrder] = id
		if t.ParticipantID != nil {
			if _, ok := s.participantsByID[*t.ParticipantID]; ok {
				s.teamsByParticipantID[*t.ParticipantID] = id
			}
		}
	}
}

func (s *Store) rebuildParticipantIndexesLocked() {
	s.participantsByUserID = make(map[uuid.UUID]uuid.UUID, len(s.participantIDs))
	for _, id := range s.participantIDs {
		p := s.participantsByID[id]
		s.participantsByUserID[p.UserID] = id
	}
	// Team ownership depends on participant existence, so refresh it too.
	s.rebuildTeamIndexesLocked()
}

func (s *Store) rebuildPickIndexLocked() {
	s.picksByTeamID = make(map[uuid.UUID][]uuid.UUID)
	for _, id := range s.pickIDs {
		p := s.picksByID[id]
		if _, ok := s.teamsByID[p.TeamID]; !ok {
			// Pick referencing an unknown team: skip rather than index a
			// dangling reference.
			log.Warn().
				Str("pick_id", id.String()).
				Str("team_id", p.TeamID.String()).
				Msg("pick references unknown team; excluded from index")
			continue
		}
		s.picksByTeamID[p.TeamID] = append(s.picksByTeamID[p.TeamID], id)
	}
	for teamID := range s.picksByTeamID {
		ids := s.picksByTeamID[teamID]
		sort.Slice(ids, func(i, j int) bool {
			return s.picksByID[ids[i]].PickOrder < s.picksByID[ids[j]].PickOrder
		})
	}
}

func (s *Store) rebuildWishlistIndexLocked() {
	s.wishlistByParticipantID = make(map[uuid.UUID][]uuid.UUID)
	for _, id := range s.wishlistIDs {
		w := s.wishlistByID[id]
		if _, ok := s.participantsByID[w.ParticipantID]; !ok {
			log.Warn().
				Str("wishlist_item_id", id.String()).
				Str("participant_id", w.ParticipantID.String()).
				Msg("wishlist item references unknown participant; excluded from index")
			continue
		}
		s.wishlistByParticipantID[w.ParticipantID] = append(s.wishlistByParticipantID[w.ParticipantID], id)
	}
	for participantID := range s.wishlistByParticipantID {
		ids := s.wishlistByParticipantID[participantID]
		sort.Slice(ids, func(i, j int) bool {
			return s.wishlistByID[ids[i]].Priority < s.wishlistByID[ids[j]].Priority
		})
	}
}

func (s *Store) rebuildAuctionIndexLocked() {
	s.currentAuctionID = nil
	for _, id := range s.auctionIDs {
		a := s.auctionsByID[id]
		if a.Status == models.AuctionStatusActive {
			auctionID := id
			s.currentAuctionID = &auctionID
			break
		}
	}
}

// deriveWishlistAvailabilityLocked enforces the invariant that a wishlist
// item is available iff no pick in the draft references its Pokemon.
func (s *Store) deriveWishlistAvailabilityLocked() {
	picked := make(map[string]bool, len(s.pickIDs))
	for _, id := range s.pickIDs {
		picked[s.picksByID[id].PokemonID] = true
	}
	for id, w := range s.wishlistByID {
		available := !picked[w.PokemonID]
		if w.IsAvailable != available {
			w.IsAvailable = available
			s.wishlistByID[id] = w
		}
	}
}

// setAvailabilityForPokemonLocked flips availability on every wishlist item
// referencing the given Pokemon. Setting the same value twice is safe.
func (s *Store) setAvailabilityForPokemonLocked(pokemonID string, available bool) {
	for id, w := range s.wishlistByID {
		if w.PokemonID == pokemonID && w.IsAvailable != available {
			w.IsAvailable = available
			s.wishlistByID[id] = w
		}
	}
}
