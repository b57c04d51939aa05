// Package selectors derives read-only views over a session store: whose turn
// it is, budget spent, draft progress. Every selector is memoized against the
// store revision, so repeated reads between mutations cost one map lookup.
package selectors

import (
	"github.com/google/uuid"

	"github.com/draftdex/draftdex/internal/draftorder"
	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/store"
)

// unitKey is the memo key for selectors that take no argument.
type unitKey struct{}

// Selectors computes derived state from a store. Construct one per store
// with New; the caches are not shareable across stores.
type Selectors struct {
	store *store.Store

	currentTeam   *memo[unitKey, *models.Team]
	userTeam      *memo[uuid.UUID, *models.Team]
	isUserTurn    *memo[uuid.UUID, bool]
	budgetUsed    *memo[uuid.UUID, int]
	teamPickCount *memo[uuid.UUID, int]
	progress      *memo[unitKey, float64]
	complete      *memo[unitKey, bool]
	canUserPick   *memo[uuid.UUID, bool]
}

// New returns selectors bound to the given store.
func New(s *store.Store) *Selectors {
	return &Selectors{
		store:         s,
		currentTeam:   newMemo[unitKey, *models.Team](),
		userTeam:      newMemo[uuid.UUID, *models.Team](),
		isUserTurn:    newMemo[uuid.UUID, bool](),
		budgetUsed:    newMemo[uuid.UUID, int](),
		teamPickCount: newMemo[uuid.UUID, int](),
		progress:      newMemo[unitKey, float64](),
		complete:      newMemo[unitKey, bool](),
		canUserPick:   newMemo[uuid.UUID, bool](),
	}
}

// CurrentTeam resolves the team on the clock. Returns nil when no draft is
// loaded, the draft is deleted, the turn is out of range, or no team holds
// the computed rank.
func (sel *Selectors) CurrentTeam() *models.Team {
	return sel.currentTeam.get(sel.store.Revision, unitKey{}, func() *models.Team {
		d := sel.store.Draft()
		if d == nil || d.Status == models.DraftStatusDeleted {
			return nil
		}
		rank, ok := draftorder.RankForTurn(sel.store.DraftOrder(), d.CurrentTurn)
		if !ok {
			return nil
		}
		t, ok := sel.store.TeamByRank(rank)
		if !ok {
			return nil
		}
		return &t
	})
}

// UserTeam resolves the team owned by a user, or nil when the user has no
// participant or the participant has no team.
func (sel *Selectors) UserTeam(userID uuid.UUID) *models.Team {
	return sel.userTeam.get(sel.store.Revision, userID, func() *models.Team {
		t, ok := sel.store.TeamForUser(userID)
		if !ok {
			return nil
		}
		return &t
	})
}

// IsUserTurn reports whether the given user's team is on the clock.
func (sel *Selectors) IsUserTurn(userID uuid.UUID) bool {
	return sel.isUserTurn.get(sel.store.Revision, userID, func() bool {
		current := sel.CurrentTeam()
		if current == nil {
			return false
		}
		mine := sel.UserTeam(userID)
		return mine != nil && mine.ID == current.ID
	})
}

// TeamBudgetUsed sums the cost of a team's picks. Unknown teams fold to zero.
func (sel *Selectors) TeamBudgetUsed(teamID uuid.UUID) int {
	return sel.budgetUsed.get(sel.store.Revision, teamID, func() int {
		used := 0
		for _, p := range sel.store.PicksForTeam(teamID) {
			used += p.Cost
		}
		return used
	})
}

// TeamPickCount returns the number of picks a team has made.
func (sel *Selectors) TeamPickCount(teamID uuid.UUID) int {
	return sel.teamPickCount.get(sel.store.Revision, teamID, func() int {
		return sel.store.PickCountForTeam(teamID)
	})
}

// DraftProgress returns completion as a percentage of the total pick slots.
// Returns 0 when no draft is loaded or the slot count is zero.
func (sel *Selectors) DraftProgress() float64 {
	return sel.progress.get(sel.store.Revision, unitKey{}, func() float64 {
		d := sel.store.Draft()
		if d == nil {
			return 0
		}
		total := len(sel.store.Teams()) * d.Settings.MaxPokemonPerTeam
		if total == 0 {
			return 0
		}
		return float64(sel.store.PickCount()) / float64(total) * 100
	})
}

// IsDraftComplete reports whether every team has reached its roster cap.
func (sel *Selectors) IsDraftComplete() bool {
	return sel.complete.get(sel.store.Revision, unitKey{}, func() bool {
		d := sel.store.Draft()
		if d == nil {
			return false
		}
		teams := sel.store.Teams()
		if len(teams) == 0 {
			return false
		}
		for _, t := range teams {
			if sel.store.PickCountForTeam(t.ID) < d.Settings.MaxPokemonPerTeam {
				return false
			}
		}
		return true
	})
}

// CanUserPick reports whether a user may pick right now: the draft is active,
// it is their turn, they own a team, and that team has budget left.
func (sel *Selectors) CanUserPick(userID uuid.UUID) bool {
	return sel.canUserPick.get(sel.store.Revision, userID, func() bool {
		d := sel.store.Draft()
		if d == nil || d.Status != models.DraftStatusActive {
			return false
		}
		team := sel.UserTeam(userID)
		if team == nil || team.BudgetRemaining <= 0 {
			return false
		}
		return sel.IsUserTurn(userID)
	})
}
