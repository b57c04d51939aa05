// Package session coordinates user actions against a draft's state: it
// validates picks and nominations, applies them optimistically, persists
// them through a PickRecorder, and rolls the state back when persistence
// fails. One Engine serves one draft session.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/selectors"
	"github.com/draftdex/draftdex/internal/store"
)

// PickRecorder persists picks to the backend of record. The engine treats a
// returned error as a rejected pick and rolls back its optimistic apply.
type PickRecorder interface {
	RecordPick(ctx context.Context, pick models.Pick) error
	DeletePick(ctx context.Context, pickID uuid.UUID) error
}

// Engine applies user actions to a session store.
type Engine struct {
	store    *store.Store
	sel      *selectors.Selectors
	recorder PickRecorder
	clock    clockwork.Clock
}

// NewEngine wires an engine to its store. Pass clockwork.NewRealClock()
// outside of tests.
func NewEngine(s *store.Store, recorder PickRecorder, clock clockwork.Clock) *Engine {
	return &Engine{
		store:    s,
		sel:      selectors.New(s),
		recorder: recorder,
		clock:    clock,
	}
}

// Selectors exposes the engine's derived-state views for read paths.
func (e *Engine) Selectors() *selectors.Selectors {
	return e.sel
}

// MakePick drafts a Pokemon for the acting user's team. The pick is applied
// optimistically (pending pick inserted, budget deducted, turn advanced)
// before persistence; if the recorder rejects it, the apply is rolled back
// exactly and the error returned. Validation failures return sentinel errors
// and leave the store untouched.
func (e *Engine) MakePick(ctx context.Context, userID uuid.UUID, pokemonID string) (models.Pick, error) {
	d := e.store.Draft()
	if d == nil {
		return models.Pick{}, ErrNoDraft
	}
	if d.Status != models.DraftStatusActive {
		return models.Pick{}, ErrDraftNotActive
	}

	team, ok := e.store.TeamForUser(userID)
	if !ok {
		return models.Pick{}, ErrTeamNotFound
	}
	if !e.sel.IsUserTurn(userID) {
		return models.Pick{}, ErrNotYourTurn
	}
	if e.store.PokemonPicked(pokemonID) {
		return models.Pick{}, ErrPokemonTaken
	}
	if e.store.PickCountForTeam(team.ID) >= d.Settings.MaxPokemonPerTeam {
		return models.Pick{}, ErrRosterFull
	}

	cost := 0
	name := pokemonID
	if tier, ok := e.store.PokemonTier(pokemonID); ok {
		cost = tier.Cost
		name = tier.Name
	}
	if cost > team.BudgetRemaining {
		return models.Pick{}, ErrInsufficientBudget
	}

	pick := models.Pick{
		ID:          uuid.New(),
		DraftID:     d.ID,
		TeamID:      team.ID,
		PokemonID:   pokemonID,
		PokemonName: name,
		PickedAt:    e.clock.Now(),
	}

	prevTurn := d.CurrentTurn
	prevBudget := team.BudgetRemaining

	applied, err := e.store.ApplyPendingPick(pick, cost)
	if err != nil {
		return models.Pick{}, applyPickError(err)
	}

	if err := e.recorder.RecordPick(ctx, applied); err != nil {
		e.store.RevertPendingPick(applied.ID, prevBudget, prevTurn)
		log.Warn().
			Err(err).
			Str("pick_id", applied.ID.String()).
			Str("pokemon_id", pokemonID).
			Msg("pick rejected by backend; rolled back")
		return models.Pick{}, fmt.Errorf("record pick: %w", err)
	}

	return applied, nil
}

// applyPickError maps the store's revalidation errors onto the session
// sentinels callers match against.
func applyPickError(err error) error {
	switch {
	case errors.Is(err, store.ErrUnknownTeam):
		return ErrTeamNotFound
	case errors.Is(err, store.ErrBudgetExceeded):
		return ErrInsufficientBudget
	case errors.Is(err, store.ErrPokemonTaken):
		return ErrPokemonTaken
	}
	return fmt.Errorf("apply pick: %w", err)
}

// ReconcilePick swaps a pending pick for the confirmed record echoed by the
// backend feed.
func (e *Engine) ReconcilePick(tempID uuid.UUID, confirmed models.Pick) {
	e.store.ReplacePick(tempID, confirmed)
}

// NominateAuction opens an auction for a Pokemon on behalf of the acting
// user's team. Only one auction may be live at a time.
func (e *Engine) NominateAuction(userID uuid.UUID, pokemonID string, openingBid int) (models.Auction, error) {
	d := e.store.Draft()
	if d == nil {
		return models.Auction{}, ErrNoDraft
	}
	if d.Status != models.DraftStatusActive {
		return models.Auction{}, ErrDraftNotActive
	}
	if _, live := e.store.CurrentAuction(); live {
		return models.Auction{}, ErrAuctionActive
	}

	team, ok := e.store.TeamForUser(userID)
	if !ok {
		return models.Auction{}, ErrTeamNotFound
	}
	if e.store.PokemonPicked(pokemonID) {
		return models.Auction{}, ErrPokemonTaken
	}
	if openingBid > team.BudgetRemaining {
		return models.Auction{}, ErrInsufficientBudget
	}

	name := pokemonID
	if tier, ok := e.store.PokemonTier(pokemonID); ok {
		name = tier.Name
	}

	bidder := team.ID
	auction := models.Auction{
		ID:                  uuid.New(),
		DraftID:             d.ID,
		PokemonID:           pokemonID,
		PokemonName:         name,
		NominatedByTeamID:   team.ID,
		CurrentBid:          openingBid,
		CurrentBidderTeamID: &bidder,
		Status:              models.AuctionStatusActive,
	}
	e.store.UpsertAuction(auction)
	return auction, nil
}

// SettleAuction closes a live auction: the current high bidder receives the
// Pokemon as a pick at the winning bid, and their budget is deducted. The
// pick is persisted through the recorder with the same optimistic protocol
// as MakePick.
func (e *Engine) SettleAuction(ctx context.Context, auctionID uuid.UUID) (models.Pick, error) {
	a, ok := e.store.Auction(auctionID)
	if !ok {
		return models.Pick{}, ErrAuctionNotFound
	}
	if a.Status != models.AuctionStatusActive || a.CurrentBidderTeamID == nil {
		return models.Pick{}, ErrAuctionNotFound
	}

	team, ok := e.store.Team(*a.CurrentBidderTeamID)
	if !ok {
		return models.Pick{}, ErrTeamNotFound
	}
	if a.CurrentBid > team.BudgetRemaining {
		return models.Pick{}, ErrInsufficientBudget
	}

	d := e.store.Draft()
	if d == nil {
		return models.Pick{}, ErrNoDraft
	}

	pick := models.Pick{
		ID:          uuid.New(),
		DraftID:     d.ID,
		TeamID:      team.ID,
		PokemonID:   a.PokemonID,
		PokemonName: a.PokemonName,
		PickedAt:    e.clock.Now(),
	}

	prevBudget := team.BudgetRemaining
	prevTurn := d.CurrentTurn

	applied, err := e.store.ApplyPendingPick(pick, a.CurrentBid)
	if err != nil {
		return models.Pick{}, applyPickError(err)
	}

	if err := e.recorder.RecordPick(ctx, applied); err != nil {
		e.store.RevertPendingPick(applied.ID, prevBudget, prevTurn)
		log.Warn().
			Err(err).
			Str("auction_id", auctionID.String()).
			Msg("auction settlement rejected by backend; rolled back")
		return models.Pick{}, fmt.Errorf("record auction pick: %w", err)
	}

	a.Status = models.AuctionStatusCompleted
	e.store.UpsertAuction(a)
	return applied, nil
}

// CancelAuction voids a live auction without awarding the Pokemon.
func (e *Engine) CancelAuction(auctionID uuid.UUID) error {
	a, ok := e.store.Auction(auctionID)
	if !ok {
		return ErrAuctionNotFound
	}
	a.Status = models.AuctionStatusCancelled
	e.store.UpsertAuction(a)
	return nil
}
