package store

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/draftorder"
	"github.com/draftdex/draftdex/internal/models"
)

// Mutators in this file implement the fail-soft policy: callers are expected
// to pass validated IDs, and an unknown ID logs a warning and leaves state
// untouched. Stricter precondition checking (insufficient budget, missing
// team) for user-facing actions lives in the session engine, backed by the
// strict ApplyPendingPick/RevertPendingPick pair below.

// Errors returned by ApplyPendingPick when revalidation under the write
// lock fails.
var (
	ErrUnknownTeam    = errors.New("unknown team")
	ErrBudgetExceeded = errors.New("budget exceeded")
	ErrPokemonTaken   = errors.New("pokemon already picked")
)

// ApplyPendingPick is the optimistic-apply half of a user pick: it inserts
// the pick, debits the team's budget, flips wishlist availability and
// advances the turn when the picking team is on the clock, all under one
// lock and one revision bump, so readers never observe a pick without its
// budget debit. The pick order and round are assigned inside the critical
// section as one past the highest existing order, so corrections that leave
// gaps in the sequence cannot collide. Preconditions are revalidated under
// the lock; on error nothing is applied.
func (s *Store) ApplyPendingPick(p models.Pick, cost int) (models.Pick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teamsByID[p.TeamID]
	if !ok {
		return models.Pick{}, ErrUnknownTeam
	}
	if cost > team.BudgetRemaining {
		return models.Pick{}, ErrBudgetExceeded
	}
	if s.pokemonPickedLocked(p.PokemonID) {
		return models.Pick{}, ErrPokemonTaken
	}

	maxOrder := 0
	for _, id := range s.pickIDs {
		if o := s.picksByID[id].PickOrder; o > maxOrder {
			maxOrder = o
		}
	}
	p.PickOrder = maxOrder + 1
	p.Round = draftorder.TurnToRound(p.PickOrder, len(s.teamIDs))
	p.Cost = cost
	p.Origin = models.PickOriginPending

	s.picksByID[p.ID] = p
	s.pickIDs = append(s.pickIDs, p.ID)
	s.insertPickIndexLocked(p)
	s.setAvailabilityForPokemonLocked(p.PokemonID, false)

	team.BudgetRemaining -= cost
	s.teamsByID[team.ID] = team

	s.advanceTurnIfOnClockLocked(p.TeamID)
	s.revision++
	return p, nil
}

// RevertPendingPick is the rollback half: it removes the pending pick and
// restores the team's budget and the turn counter in the same atomic
// mutation, re-deriving wishlist availability for the released Pokemon.
func (s *Store) RevertPendingPick(pickID uuid.UUID, budget, turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.picksByID[pickID]
	if !ok {
		log.Warn().Str("pick_id", pickID.String()).Msg("revert pick: unknown pick")
		return
	}

	delete(s.picksByID, pickID)
	s.pickIDs = removeID(s.pickIDs, pickID)
	s.picksByTeamID[p.TeamID] = removeID(s.picksByTeamID[p.TeamID], pickID)
	if len(s.picksByTeamID[p.TeamID]) == 0 {
		delete(s.picksByTeamID, p.TeamID)
	}
	if !s.pokemonPickedLocked(p.PokemonID) {
		s.setAvailabilityForPokemonLocked(p.PokemonID, true)
	}

	if team, ok := s.teamsByID[p.TeamID]; ok {
		team.BudgetRemaining = budget
		s.teamsByID[p.TeamID] = team
	}
	if s.draft != nil {
		s.draft.CurrentTurn = turn
	}
	s.revision++
}

// AddPick inserts a pick, updates the per-team index, flips wishlist
// availability for the drafted Pokemon, and advances the turn when the pick
// belongs to the team currently on the clock. It does not touch budgets.
func (s *Store) AddPick(p models.Pick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teamsByID[p.TeamID]; !ok {
		log.Warn().Str("team_id", p.TeamID.String()).Msg("add pick: unknown team")
		return
	}
	if _, dup := s.picksByID[p.ID]; dup {
		log.Warn().Str("pick_id", p.ID.String()).Msg("add pick: duplicate pick id")
		return
	}
	for _, id := range s.pickIDs {
		if s.picksByID[id].PickOrder == p.PickOrder {
			log.Warn().
				Int("pick_order", p.PickOrder).
				Str("pick_id", p.ID.String()).
				Msg("add pick: pick order already taken")
			return
		}
	}
	if p.Origin == "" {
		p.Origin = models.PickOriginConfirmed
	}

	s.picksByID[p.ID] = p
	s.pickIDs = append(s.pickIDs, p.ID)
	s.insertPickIndexLocked(p)
	s.setAvailabilityForPokemonLocked(p.PokemonID, false)
	s.advanceTurnIfOnClockLocked(p.TeamID)
	s.revision++
}

// RemovePick deletes a pick (rollback of a failed optimistic pick, or an
// explicit correction) and restores wishlist availability when no other pick
// references the same Pokemon.
func (s *Store) RemovePick(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.picksByID[id]
	if !ok {
		log.Warn().Str("pick_id", id.String()).Msg("remove pick: unknown pick")
		return
	}

	delete(s.picksByID, id)
	s.pickIDs = removeID(s.pickIDs, id)
	s.picksByTeamID[p.TeamID] = removeID(s.picksByTeamID[p.TeamID], id)
	if len(s.picksByTeamID[p.TeamID]) == 0 {
		delete(s.picksByTeamID, p.TeamID)
	}
	if !s.pokemonPickedLocked(p.PokemonID) {
		s.setAvailabilityForPokemonLocked(p.PokemonID, true)
	}
	s.revision++
}

// ReplacePick swaps a pending pick for its confirmed counterpart once the
// backend echo arrives. Budgets, availability and turn state are untouched:
// the optimistic apply already accounted for them.
func (s *Store) ReplacePick(tempID uuid.UUID, confirmed models.Pick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.picksByID[tempID]
	if !ok {
		log.Warn().Str("pick_id", tempID.String()).Msg("replace pick: unknown pending pick")
		return
	}
	if prev.Origin != models.PickOriginPending {
		log.Warn().Str("pick_id", tempID.String()).Msg("replace pick: pick is not pending")
		return
	}
	confirmed.Origin = models.PickOriginConfirmed

	delete(s.picksByID, tempID)
	s.pickIDs = removeID(s.pickIDs, tempID)
	s.picksByTeamID[prev.TeamID] = removeID(s.picksByTeamID[prev.TeamID], tempID)

	s.picksByID[confirmed.ID] = confirmed
	s.pickIDs = append(s.pickIDs, confirmed.ID)
	s.insertPickIndexLocked(confirmed)
	s.revision++
}

// UpdateTeam replaces a team record. A negative budget is clamped to zero
// with a diagnostic rather than propagated.
func (s *Store) UpdateTeam(t models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teamsByID[t.ID]; !ok {
		log.Warn().Str("team_id", t.ID.String()).Msg("update team: unknown team")
		return
	}
	if t.BudgetRemaining < 0 {
		log.Warn().
			Str("team_id", t.ID.String()).
			Int("budget", t.BudgetRemaining).
			Msg("update team: negative budget clamped to zero")
		t.BudgetRemaining = 0
	}
	s.teamsByID[t.ID] = t
	s.rebuildTeamIndexesLocked()
	s.revision++
}

// UpdateTeamBudget sets a team's remaining budget, clamping negatives to
// zero with a diagnostic.
func (s *Store) UpdateTeamBudget(teamID uuid.UUID, budget int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teamsByID[teamID]
	if !ok {
		log.Warn().Str("team_id", teamID.String()).Msg("update budget: unknown team")
		return
	}
	if budget < 0 {
		log.Warn().
			Str("team_id", teamID.String()).
			Int("budget", budget).
			Msg("update budget: negative budget clamped to zero")
		budget = 0
	}
	t.BudgetRemaining = budget
	s.teamsByID[teamID] = t
	s.revision++
}

// SetCurrentTurn sets the draft's 1-indexed turn counter.
func (s *Store) SetCurrentTurn(turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		log.Warn().Msg("set current turn: no draft loaded")
		return
	}
	s.draft.CurrentTurn = turn
	s.revision++
}

// SetDraftStatus transitions the draft lifecycle state.
func (s *Store) SetDraftStatus(status models.DraftStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		log.Warn().Str("status", string(status)).Msg("set draft status: no draft loaded")
		return
	}
	s.draft.Status = status
	s.revision++
}

// AddWishlistItem inserts a wishlist item for a participant. Availability is
// derived from the current pick set, not taken from the caller.
func (s *Store) AddWishlistItem(w models.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participantsByID[w.ParticipantID]; !ok {
		log.Warn().Str("participant_id", w.ParticipantID.String()).Msg("add wishlist item: unknown participant")
		return
	}
	if _, dup := s.wishlistByID[w.ID]; dup {
		log.Warn().Str("wishlist_item_id", w.ID.String()).Msg("add wishlist item: duplicate id")
		return
	}
	w.IsAvailable = !s.pokemonPickedLocked(w.PokemonID)

	s.wishlistByID[w.ID] = w
	s.wishlistIDs = append(s.wishlistIDs, w.ID)
	ids := append(s.wishlistByParticipantID[w.ParticipantID], w.ID)
	sort.Slice(ids, func(i, j int) bool {
		return s.wishlistByID[ids[i]].Priority < s.wishlistByID[ids[j]].Priority
	})
	s.wishlistByParticipantID[w.ParticipantID] = ids
	s.revision++
}

// RemoveWishlistItem deletes a wishlist item.
func (s *Store) RemoveWishlistItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wishlistByID[id]
	if !ok {
		log.Warn().Str("wishlist_item_id", id.String()).Msg("remove wishlist item: unknown item")
		return
	}
	delete(s.wishlistByID, id)
	s.wishlistIDs = removeID(s.wishlistIDs, id)
	s.wishlistByParticipantID[w.ParticipantID] = removeID(s.wishlistByParticipantID[w.ParticipantID], id)
	if len(s.wishlistByParticipantID[w.ParticipantID]) == 0 {
		delete(s.wishlistByParticipantID, w.ParticipantID)
	}
	s.revision++
}

// ReorderWishlist reassigns priorities for a participant's wishlist to match
// the given item order. Every ID must belong to that participant's list.
func (s *Store) ReorderWishlist(participantID uuid.UUID, orderedIDs []uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.wishlistByParticipantID[participantID]
	if len(orderedIDs) != len(current) {
		log.Warn().
			Str("participant_id", participantID.String()).
			Int("got", len(orderedIDs)).
			Int("want", len(current)).
			Msg("reorder wishlist: item count mismatch")
		return
	}
	for _, id := range orderedIDs {
		w, ok := s.wishlistByID[id]
		if !ok || w.ParticipantID != participantID {
			log.Warn().
				Str("wishlist_item_id", id.String()).
				Str("participant_id", participantID.String()).
				Msg("reorder wishlist: item does not belong to participant")
			return
		}
	}

	for i, id := range orderedIDs {
		w := s.wishlistByID[id]
		w.Priority = i + 1
		s.wishlistByID[id] = w
	}
	ids := make([]uuid.UUID, len(orderedIDs))
	copy(ids, orderedIDs)
	s.wishlistByParticipantID[participantID] = ids
	s.revision++
}

// UpsertAuction inserts or replaces an auction. The invariant that at most
// one auction is ACTIVE per draft is enforced here: activating a second
// auction while another is live is rejected.
func (s *Store) UpsertAuction(a models.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Status == models.AuctionStatusActive &&
		s.currentAuctionID != nil && *s.currentAuctionID != a.ID {
		log.Warn().
			Str("auction_id", a.ID.String()).
			Str("active_auction_id", s.currentAuctionID.String()).
			Msg("upsert auction: another auction is already active")
		return
	}

	if _, exists := s.auctionsByID[a.ID]; !exists {
		s.auctionIDs = append(s.auctionIDs, a.ID)
	}
	s.auctionsByID[a.ID] = a

	switch {
	case a.Status == models.AuctionStatusActive:
		id := a.ID
		s.currentAuctionID = &id
	case s.currentAuctionID != nil && *s.currentAuctionID == a.ID:
		s.currentAuctionID = nil
	}
	s.revision++
}

// RemoveAuction deletes an auction record.
func (s *Store) RemoveAuction(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctionsByID[id]; !ok {
		log.Warn().Str("auction_id", id.String()).Msg("remove auction: unknown auction")
		return
	}
	delete(s.auctionsByID, id)
	s.auctionIDs = removeID(s.auctionIDs, id)
	if s.currentAuctionID != nil && *s.currentAuctionID == id {
		s.currentAuctionID = nil
	}
	s.revision++
}

func (s *Store) insertPickIndexLocked(p models.Pick) {
	ids := append(s.picksByTeamID[p.TeamID], p.ID)
	sort.Slice(ids, func(i, j int) bool {
		return s.picksByID[ids[i]].PickOrder < s.picksByID[ids[j]].PickOrder
	})
	s.picksByTeamID[p.TeamID] = ids
}

func (s *Store) advanceTurnIfOnClockLocked(teamID uuid.UUID) {
	if s.draft == nil {
		return
	}
	rank, ok := draftorder.RankForTurn(s.draftOrder, s.draft.CurrentTurn)
	if !ok {
		return
	}
	if t, exists := s.teamsByID[teamID]; exists && t.DraftOrder == rank {
		s.draft.CurrentTurn++
	}
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
