package store

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/models"
)

// Snapshot is a partial view of a draft session as delivered by the
// real-time feed. A nil slice means the collection is absent from this
// snapshot; a non-nil (possibly empty) slice replaces the collection.
type Snapshot struct {
	Draft         *models.Draft
	Teams         []models.Team
	Participants  []models.Participant
	Picks         []models.Pick
	Auctions      []models.Auction
	WishlistItems []models.WishlistItem
	PokemonTiers  []models.PokemonTier
}

// ApplySnapshot is the primary ingress for real-time updates. Each
// collection present in the snapshot replaces the store's copy wholesale;
// afterwards the snake order is recomputed (when teams or rounds may have
// changed), every relationship index is rebuilt, and wishlist availability
// is re-derived from the resulting pick set. Applying the same snapshot
// twice yields the same entity state.
func (s *Store) ApplySnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Draft != nil {
		d := *snap.Draft
		s.draft = &d
	}
	if snap.Teams != nil {
		s.replaceTeamsLocked(snap.Teams)
	}
	if snap.Participants != nil {
		s.replaceParticipantsLocked(snap.Participants)
	}
	if snap.Picks != nil {
		s.replacePicksLocked(snap.Picks)
	}
	if snap.Auctions != nil {
		s.replaceAuctionsLocked(snap.Auctions)
	}
	if snap.WishlistItems != nil {
		s.replaceWishlistLocked(snap.WishlistItems)
	}
	if snap.PokemonTiers != nil {
		s.replaceTiersLocked(snap.PokemonTiers)
	}

	if snap.Draft != nil || snap.Teams != nil {
		s.recomputeDraftOrderLocked()
	}

	// Cross-references may be stale even in collections this snapshot did
	// not carry, so rebuild everything.
	s.rebuildIndexesLocked()
	s.deriveWishlistAvailabilityLocked()
	s.revision++
}

// SetDraft replaces the draft metadata.
func (s *Store) SetDraft(d models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.draft
	s.draft = &d
	if prev == nil || prev.Settings.MaxPokemonPerTeam != d.Settings.MaxPokemonPerTeam {
		s.recomputeDraftOrderLocked()
	}
	s.revision++
}

// SetTeams replaces the team collection and refreshes the indexes and
// cached order that depend on it.
func (s *Store) SetTeams(teams []models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceTeamsLocked(teams)
	s.recomputeDraftOrderLocked()
	s.rebuildTeamIndexesLocked()
	s.rebuildPickIndexLocked()
	s.revision++
}

// SetParticipants replaces the participant collection.
func (s *Store) SetParticipants(participants []models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceParticipantsLocked(participants)
	s.rebuildParticipantIndexesLocked()
	s.rebuildWishlistIndexLocked()
	s.revision++
}

// SetPicks replaces the pick collection and re-derives everything downstream
// of it (per-team index, wishlist availability).
func (s *Store) SetPicks(picks []models.Pick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replacePicksLocked(picks)
	s.rebuildPickIndexLocked()
	s.deriveWishlistAvailabilityLocked()
	s.revision++
}

// SetAuctions replaces the auction collection.
func (s *Store) SetAuctions(auctions []models.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceAuctionsLocked(auctions)
	s.rebuildAuctionIndexLocked()
	s.revision++
}

// SetWishlistItems replaces the wishlist collection.
func (s *Store) SetWishlistItems(items []models.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceWishlistLocked(items)
	s.rebuildWishlistIndexLocked()
	s.deriveWishlistAvailabilityLocked()
	s.revision++
}

// SetPokemonTiers replaces the tier sheet.
func (s *Store) SetPokemonTiers(tiers []models.PokemonTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceTiersLocked(tiers)
	s.revision++
}

func (s *Store) replaceTeamsLocked(teams []models.Team) {
	s.teamsByID = make(map[uuid.UUID]models.Team, len(teams))
	s.teamIDs = make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		if _, dup := s.teamsByID[t.ID]; dup {
			log.Warn().Str("team_id", t.ID.String()).Msg("duplicate team in snapshot; keeping first")
			continue
		}
		s.teamsByID[t.ID] = t
		s.teamIDs = append(s.teamIDs, t.ID)
	}
}

func (s *Store) replaceParticipantsLocked(participants []models.Participant) {
	s.participantsByID = make(map[uuid.UUID]models.Participant, len(participants))
	s.participantIDs = make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		if _, dup := s.participantsByID[p.ID]; dup {
			log.Warn().Str("participant_id", p.ID.String()).Msg("duplicate participant in snapshot; keeping first")
			continue
		}
		s.participantsByID[p.ID] = p
		s.participantIDs = append(s.participantIDs, p.ID)
	}
}

// replacePicksLocked replaces the pick table while carrying forward local
// pending picks the snapshot does not yet know about. A pending pick is
// considered confirmed (and dropped in favor of the incoming record) when
// the snapshot contains a confirmed pick for the same team and Pokemon.
func (s *Store) replacePicksLocked(picks []models.Pick) {
	pending := make([]models.Pick, 0)
	for _, id := range s.pickIDs {
		if p := s.picksByID[id]; p.Origin == models.PickOriginPending {
			pending = append(pending, p)
		}
	}

	s.picksByID = make(map[uuid.UUID]models.Pick, len(picks))
	s.pickIDs = make([]uuid.UUID, 0, len(picks))
	for _, p := range picks {
		if _, dup := s.picksByID[p.ID]; dup {
			log.Warn().Str("pick_id", p.ID.String()).Msg("duplicate pick in snapshot; keeping first")
			continue
		}
		if p.Origin == "" {
			p.Origin = models.PickOriginConfirmed
		}
		s.picksByID[p.ID] = p
		s.pickIDs = append(s.pickIDs, p.ID)
	}

	for _, p := range pending {
		if s.pickCoveredLocked(p) {
			continue // the backend echo has landed; the confirmed record wins
		}
		s.picksByID[p.ID] = p
		s.pickIDs = append(s.pickIDs, p.ID)
	}
}

func (s *Store) pickCoveredLocked(pending models.Pick) bool {
	for _, id := range s.pickIDs {
		p := s.picksByID[id]
		if p.Origin != models.PickOriginConfirmed {
			continue
		}
		if p.TeamID == pending.TeamID && p.PokemonID == pending.PokemonID {
			return true
		}
	}
	return false
}

func (s *Store) replaceAuctionsLocked(auctions []models.Auction) {
	s.auctionsByID = make(map[uuid.UUID]models.Auction, len(auctions))
	s.auctionIDs = make([]uuid.UUID, 0, len(auctions))
	for _, a := range auctions {
		if _, dup := s.auctionsByID[a.ID]; dup {
			log.Warn().Str("auction_id", a.ID.String()).Msg("duplicate auction in snapshot; keeping first")
			continue
		}
		s.auctionsByID[a.ID] = a
		s.auctionIDs = append(s.auctionIDs, a.ID)
	}
}

func (s *Store) replaceWishlistLocked(items []models.WishlistItem) {
	s.wishlistByID = make(map[uuid.UUID]models.WishlistItem, len(items))
	s.wishlistIDs = make([]uuid.UUID, 0, len(items))
	for _, w := range items {
		if _, dup := s.wishlistByID[w.ID]; dup {
			log.Warn().Str("wishlist_item_id", w.ID.String()).Msg("duplicate wishlist item in snapshot; keeping first")
			continue
		}
		s.wishlistByID[w.ID] = w
		s.wishlistIDs = append(s.wishlistIDs, w.ID)
	}
}

func (s *Store) replaceTiersLocked(tiers []models.PokemonTier) {
	s.tiersByID = make(map[string]models.PokemonTier, len(tiers))
	s.tierIDs = make([]string, 0, len(tiers))
	for _, t := range tiers {
		if _, dup := s.tiersByID[t.PokemonID]; dup {
			log.Warn().Str("pokemon_id", t.PokemonID).Msg("duplicate tier row in snapshot; keeping first")
			continue
		}
		s.tiersByID[t.PokemonID] = t
		s.tierIDs = append(s.tierIDs, t.PokemonID)
	}
}
