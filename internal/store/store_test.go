package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdex/draftdex/internal/models"
)

// fixture builds a four-team snake draft with one participant per team.
type fixture struct {
	draft        models.Draft
	teams        []models.Team
	participants []models.Participant
	userIDs      []uuid.UUID
}

func newFixture() fixture {
	f := fixture{
		draft: models.Draft{
			ID:          uuid.New(),
			RoomCode:    "AXLE42",
			DraftType:   models.DraftTypeSnake,
			Status:      models.DraftStatusActive,
			CurrentTurn: 1,
			Settings: models.DraftSettings{
				TeamCount:         4,
				MaxPokemonPerTeam: 2,
				TimePerPickSec:    90,
				BudgetPerTeam:     100,
			},
			CreatedAt: time.Now(),
		},
	}
	for i := 0; i < 4; i++ {
		p := models.Participant{
			ID:          uuid.New(),
			DraftID:     f.draft.ID,
			UserID:      uuid.New(),
			DisplayName: "coach",
			Online:      true,
		}
		pid := p.ID
		t := models.Team{
			ID:              uuid.New(),
			DraftID:         f.draft.ID,
			Name:            "team",
			DraftOrder:      i + 1,
			BudgetRemaining: 100,
			ParticipantID:   &pid,
		}
		f.participants = append(f.participants, p)
		f.teams = append(f.teams, t)
		f.userIDs = append(f.userIDs, p.UserID)
	}
	return f
}

func (f fixture) snapshot() Snapshot {
	d := f.draft
	return Snapshot{
		Draft:        &d,
		Teams:        f.teams,
		Participants: f.participants,
		Picks:        []models.Pick{},
	}
}

func loadedStore(t *testing.T) (*Store, fixture) {
	t.Helper()
	f := newFixture()
	s := New()
	s.ApplySnapshot(f.snapshot())
	return s, f
}

func TestApplySnapshotIdempotent(t *testing.T) {
	s, f := loadedStore(t)
	revAfterFirst := s.Revision()

	s.ApplySnapshot(f.snapshot())

	assert.Greater(t, s.Revision(), revAfterFirst, "revision still bumps on a no-op snapshot")
	assert.Len(t, s.Teams(), 4)
	assert.Equal(t, []int{1, 2, 3, 4, 4, 3, 2, 1}, s.DraftOrder())

	for i, team := range f.teams {
		got, ok := s.TeamByRank(i + 1)
		require.True(t, ok)
		assert.Equal(t, team.ID, got.ID)
	}
}

func TestSnapshotIndexConsistency(t *testing.T) {
	s, f := loadedStore(t)

	for i, userID := range f.userIDs {
		team, ok := s.TeamForUser(userID)
		require.True(t, ok, "user %d should resolve to a team", i)
		assert.Equal(t, f.teams[i].ID, team.ID)
	}

	// A pick referencing an unknown team is kept out of the per-team index.
	orphan := models.Pick{
		ID:        uuid.New(),
		DraftID:   f.draft.ID,
		TeamID:    uuid.New(),
		PokemonID: "garchomp",
		PickOrder: 1,
	}
	s.SetPicks([]models.Pick{orphan})

	for _, team := range f.teams {
		assert.Empty(t, s.PicksForTeam(team.ID))
	}
	_, ok := s.Pick(orphan.ID)
	assert.True(t, ok, "the pick itself is retained")
}

func TestAddPickAdvancesTurnOnlyForTeamOnClock(t *testing.T) {
	s, f := loadedStore(t)

	// Rank 2 picks out of turn: recorded, but the clock does not move.
	s.AddPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[1].ID,
		PokemonID: "dragapult", PickOrder: 1,
	})
	require.Equal(t, 1, s.Draft().CurrentTurn)

	// Rank 1 is on the clock for turn 1.
	s.AddPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "gholdengo", PickOrder: 2,
	})
	assert.Equal(t, 2, s.Draft().CurrentTurn)
}

func TestAddPickRejectsDuplicateOrderAndUnknownTeam(t *testing.T) {
	s, f := loadedStore(t)

	first := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "kingambit", PickOrder: 1,
	}
	s.AddPick(first)
	rev := s.Revision()

	s.AddPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[1].ID,
		PokemonID: "ting-lu", PickOrder: 1,
	})
	assert.Equal(t, rev, s.Revision(), "duplicate pick order is a no-op")

	s.AddPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: uuid.New(),
		PokemonID: "ting-lu", PickOrder: 2,
	})
	assert.Equal(t, rev, s.Revision(), "unknown team is a no-op")
	assert.Equal(t, 1, s.PickCount())
}

func TestWishlistAvailabilityFollowsPicks(t *testing.T) {
	s, f := loadedStore(t)

	item := models.WishlistItem{
		ID:            uuid.New(),
		ParticipantID: f.participants[0].ID,
		PokemonID:     "garchomp",
		PokemonName:   "Garchomp",
		Priority:      1,
	}
	s.AddWishlistItem(item)

	got, ok := s.WishlistItem(item.ID)
	require.True(t, ok)
	assert.True(t, got.IsAvailable)

	pick := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1,
	}
	s.AddPick(pick)

	got, _ = s.WishlistItem(item.ID)
	assert.False(t, got.IsAvailable, "picked Pokemon becomes unavailable")

	s.RemovePick(pick.ID)

	got, _ = s.WishlistItem(item.ID)
	assert.True(t, got.IsAvailable, "removing the only pick restores availability")
}

func TestApplyPendingPickIsOneAtomicMutation(t *testing.T) {
	s, f := loadedStore(t)
	rev := s.Revision()

	applied, err := s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID, PokemonID: "garchomp",
	}, 20)
	require.NoError(t, err)

	assert.Equal(t, rev+1, s.Revision(), "pick insert, budget debit and turn advance share one revision bump")
	assert.Equal(t, 1, applied.PickOrder)
	assert.Equal(t, 1, applied.Round)
	assert.Equal(t, 20, applied.Cost)
	assert.Equal(t, models.PickOriginPending, applied.Origin)

	team, _ := s.Team(f.teams[0].ID)
	assert.Equal(t, 80, team.BudgetRemaining)
	assert.Equal(t, 2, s.Draft().CurrentTurn)
}

func TestApplyPendingPickAssignsOrderPastGaps(t *testing.T) {
	s, f := loadedStore(t)

	first, err := s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID, PokemonID: "garchomp",
	}, 10)
	require.NoError(t, err)
	_, err = s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[1].ID, PokemonID: "dragapult",
	}, 10)
	require.NoError(t, err)

	s.RemovePick(first.ID)

	third, err := s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[2].ID, PokemonID: "kingambit",
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, third.PickOrder, "gaps left by corrections are not reused")
}

func TestApplyPendingPickRejectionLeavesStoreUntouched(t *testing.T) {
	s, f := loadedStore(t)

	rev := s.Revision()
	_, err := s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: uuid.New(), PokemonID: "garchomp",
	}, 10)
	assert.ErrorIs(t, err, ErrUnknownTeam)
	assert.Equal(t, rev, s.Revision())

	_, err = s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID, PokemonID: "garchomp",
	}, 101)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, rev, s.Revision())

	_, err = s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID, PokemonID: "garchomp",
	}, 10)
	require.NoError(t, err)
	rev = s.Revision()

	_, err = s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[1].ID, PokemonID: "garchomp",
	}, 10)
	assert.ErrorIs(t, err, ErrPokemonTaken)
	assert.Equal(t, rev, s.Revision())
	assert.Equal(t, 1, s.PickCount())
}

func TestRevertPendingPickRestoresState(t *testing.T) {
	s, f := loadedStore(t)

	item := models.WishlistItem{
		ID: uuid.New(), ParticipantID: f.participants[0].ID,
		PokemonID: "garchomp", Priority: 1,
	}
	s.AddWishlistItem(item)

	applied, err := s.ApplyPendingPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID, PokemonID: "garchomp",
	}, 20)
	require.NoError(t, err)

	got, _ := s.WishlistItem(item.ID)
	require.False(t, got.IsAvailable)

	rev := s.Revision()
	s.RevertPendingPick(applied.ID, 100, 1)

	assert.Equal(t, rev+1, s.Revision(), "revert is a single mutation")
	assert.Zero(t, s.PickCount())
	assert.Equal(t, 1, s.Draft().CurrentTurn)

	team, _ := s.Team(f.teams[0].ID)
	assert.Equal(t, 100, team.BudgetRemaining)

	got, _ = s.WishlistItem(item.ID)
	assert.True(t, got.IsAvailable, "availability restored with the revert")
}

func TestReplacePickReconciliation(t *testing.T) {
	s, f := loadedStore(t)

	tempID := uuid.New()
	s.AddPick(models.Pick{
		ID: tempID, DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1, Origin: models.PickOriginPending,
	})

	confirmed := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1,
	}
	s.ReplacePick(tempID, confirmed)

	_, ok := s.Pick(tempID)
	assert.False(t, ok)

	got, ok := s.Pick(confirmed.ID)
	require.True(t, ok)
	assert.Equal(t, models.PickOriginConfirmed, got.Origin)
	assert.Equal(t, 1, s.PickCountForTeam(f.teams[0].ID))
}

func TestSnapshotCarriesForwardPendingPicks(t *testing.T) {
	s, f := loadedStore(t)

	pendingUncovered := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[1].ID,
		PokemonID: "dragapult", PickOrder: 2, Origin: models.PickOriginPending,
	}
	pendingCovered := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1, Origin: models.PickOriginPending,
	}
	s.AddPick(pendingCovered)
	s.AddPick(pendingUncovered)

	echo := models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1,
	}
	s.SetPicks([]models.Pick{echo})

	_, ok := s.Pick(pendingCovered.ID)
	assert.False(t, ok, "confirmed echo supersedes the matching pending pick")

	got, ok := s.Pick(pendingUncovered.ID)
	require.True(t, ok, "uncovered pending pick survives the replace")
	assert.Equal(t, models.PickOriginPending, got.Origin)
	assert.Equal(t, 2, s.PickCount())
}

func TestBudgetClampedToZero(t *testing.T) {
	s, f := loadedStore(t)

	s.UpdateTeamBudget(f.teams[0].ID, -30)

	team, ok := s.Team(f.teams[0].ID)
	require.True(t, ok)
	assert.Equal(t, 0, team.BudgetRemaining)

	updated := f.teams[1]
	updated.BudgetRemaining = -1
	s.UpdateTeam(updated)

	team, _ = s.Team(f.teams[1].ID)
	assert.Equal(t, 0, team.BudgetRemaining)
}

func TestReorderWishlist(t *testing.T) {
	s, f := loadedStore(t)
	pid := f.participants[0].ID

	var ids []uuid.UUID
	for i, mon := range []string{"garchomp", "dragapult", "kingambit"} {
		item := models.WishlistItem{
			ID: uuid.New(), ParticipantID: pid, PokemonID: mon, Priority: i + 1,
		}
		s.AddWishlistItem(item)
		ids = append(ids, item.ID)
	}

	s.ReorderWishlist(pid, []uuid.UUID{ids[2], ids[0], ids[1]})

	list := s.WishlistForParticipant(pid)
	require.Len(t, list, 3)
	assert.Equal(t, "kingambit", list[0].PokemonID)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, "garchomp", list[1].PokemonID)
	assert.Equal(t, "dragapult", list[2].PokemonID)

	rev := s.Revision()
	s.ReorderWishlist(pid, []uuid.UUID{ids[0]})
	assert.Equal(t, rev, s.Revision(), "count mismatch is a no-op")
}

func TestSingleActiveAuction(t *testing.T) {
	s, f := loadedStore(t)

	first := models.Auction{
		ID: uuid.New(), DraftID: f.draft.ID, PokemonID: "garchomp",
		NominatedByTeamID: f.teams[0].ID, Status: models.AuctionStatusActive,
	}
	s.UpsertAuction(first)

	current, ok := s.CurrentAuction()
	require.True(t, ok)
	assert.Equal(t, first.ID, current.ID)

	second := models.Auction{
		ID: uuid.New(), DraftID: f.draft.ID, PokemonID: "dragapult",
		NominatedByTeamID: f.teams[1].ID, Status: models.AuctionStatusActive,
	}
	s.UpsertAuction(second)

	_, ok = s.Auction(second.ID)
	assert.False(t, ok, "second active auction is rejected")

	first.Status = models.AuctionStatusCompleted
	s.UpsertAuction(first)

	_, ok = s.CurrentAuction()
	assert.False(t, ok, "completing the auction clears the active slot")
}

func TestReset(t *testing.T) {
	s, f := loadedStore(t)
	s.AddPick(models.Pick{
		ID: uuid.New(), DraftID: f.draft.ID, TeamID: f.teams[0].ID,
		PokemonID: "garchomp", PickOrder: 1,
	})

	s.Reset()

	assert.Nil(t, s.Draft())
	assert.Empty(t, s.Teams())
	assert.Zero(t, s.PickCount())
	assert.Empty(t, s.DraftOrder())

	_, ok := s.TeamForUser(f.userIDs[0])
	assert.False(t, ok)
}
