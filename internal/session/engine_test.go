package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/store"
)

// fakeRecorder captures recorded picks and can be primed to fail.
type fakeRecorder struct {
	recorded []models.Pick
	deleted  []uuid.UUID
	failWith error
}

func (r *fakeRecorder) RecordPick(_ context.Context, p models.Pick) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.recorded = append(r.recorded, p)
	return nil
}

func (r *fakeRecorder) DeletePick(_ context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

type testRig struct {
	engine   *Engine
	store    *store.Store
	recorder *fakeRecorder
	clock    *clockwork.FakeClock
	draft    models.Draft
	teams    []models.Team
	userIDs  []uuid.UUID
}

func newRig(t *testing.T, teamCount, maxPerTeam, budget int) *testRig {
	t.Helper()

	rig := &testRig{
		store:    store.New(),
		recorder: &fakeRecorder{},
		clock:    clockwork.NewFakeClock(),
	}
	rig.draft = models.Draft{
		ID:          uuid.New(),
		RoomCode:    "PIKA99",
		DraftType:   models.DraftTypeSnake,
		Status:      models.DraftStatusActive,
		CurrentTurn: 1,
		Settings: models.DraftSettings{
			TeamCount:         teamCount,
			MaxPokemonPerTeam: maxPerTeam,
			BudgetPerTeam:     budget,
		},
		CreatedAt: time.Now(),
	}

	var participants []models.Participant
	for i := 0; i < teamCount; i++ {
		p := models.Participant{
			ID:      uuid.New(),
			DraftID: rig.draft.ID,
			UserID:  uuid.New(),
			Online:  true,
		}
		pid := p.ID
		rig.teams = append(rig.teams, models.Team{
			ID:              uuid.New(),
			DraftID:         rig.draft.ID,
			DraftOrder:      i + 1,
			BudgetRemaining: budget,
			ParticipantID:   &pid,
		})
		participants = append(participants, p)
		rig.userIDs = append(rig.userIDs, p.UserID)
	}

	d := rig.draft
	rig.store.ApplySnapshot(store.Snapshot{
		Draft:        &d,
		Teams:        rig.teams,
		Participants: participants,
		Picks:        []models.Pick{},
		PokemonTiers: []models.PokemonTier{
			{PokemonID: "garchomp", Name: "Garchomp", Tier: "S", Cost: 20},
			{PokemonID: "dragapult", Name: "Dragapult", Tier: "S", Cost: 18},
			{PokemonID: "kingambit", Name: "Kingambit", Tier: "A", Cost: 15},
			{PokemonID: "ting-lu", Name: "Ting-Lu", Tier: "A", Cost: 14},
			{PokemonID: "gholdengo", Name: "Gholdengo", Tier: "S", Cost: 19},
			{PokemonID: "pelipper", Name: "Pelipper", Tier: "B", Cost: 10},
			{PokemonID: "clefable", Name: "Clefable", Tier: "B", Cost: 9},
			{PokemonID: "breloom", Name: "Breloom", Tier: "B", Cost: 8},
		},
	})
	rig.engine = NewEngine(rig.store, rig.recorder, rig.clock)
	return rig
}

func TestMakePickHappyPath(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()

	pick, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	require.NoError(t, err)

	assert.Equal(t, rig.teams[0].ID, pick.TeamID)
	assert.Equal(t, "Garchomp", pick.PokemonName)
	assert.Equal(t, 20, pick.Cost)
	assert.Equal(t, 1, pick.PickOrder)
	assert.Equal(t, 1, pick.Round)
	assert.Equal(t, models.PickOriginPending, pick.Origin)
	assert.Equal(t, rig.clock.Now(), pick.PickedAt)

	require.Len(t, rig.recorder.recorded, 1)
	assert.Equal(t, pick.ID, rig.recorder.recorded[0].ID)

	team, _ := rig.store.Team(rig.teams[0].ID)
	assert.Equal(t, 80, team.BudgetRemaining)
	assert.Equal(t, 2, rig.store.Draft().CurrentTurn)
}

func TestMakePickValidationLeavesStoreUntouched(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()
	rev := rig.store.Revision()

	cases := []struct {
		name    string
		userID  uuid.UUID
		pokemon string
		wantErr error
	}{
		{"unknown user", uuid.New(), "garchomp", ErrTeamNotFound},
		{"out of turn", rig.userIDs[2], "garchomp", ErrNotYourTurn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := rig.engine.MakePick(ctx, tc.userID, tc.pokemon)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, rev, rig.store.Revision(), "store must not change on rejection")
		})
	}
	assert.Empty(t, rig.recorder.recorded)
}

func TestMakePickRejectsTakenPokemon(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()

	_, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	require.NoError(t, err)

	_, err = rig.engine.MakePick(ctx, rig.userIDs[1], "garchomp")
	assert.ErrorIs(t, err, ErrPokemonTaken)
}

func TestMakePickInsufficientBudget(t *testing.T) {
	rig := newRig(t, 4, 2, 10)
	ctx := context.Background()

	_, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	assert.ErrorIs(t, err, ErrInsufficientBudget)
	assert.Zero(t, rig.store.PickCount())
}

func TestMakePickNotActiveDraft(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	rig.store.SetDraftStatus(models.DraftStatusPaused)

	_, err := rig.engine.MakePick(context.Background(), rig.userIDs[0], "garchomp")
	assert.ErrorIs(t, err, ErrDraftNotActive)
}

func TestMakePickRollbackOnRecorderFailure(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()
	rig.recorder.failWith = errors.New("backend unavailable")

	teamsBefore := rig.store.Teams()
	turnBefore := rig.store.Draft().CurrentTurn
	countBefore := rig.store.PickCount()

	_, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend unavailable")

	assert.Equal(t, teamsBefore, rig.store.Teams(), "budgets restored exactly")
	assert.Equal(t, turnBefore, rig.store.Draft().CurrentTurn, "turn restored")
	assert.Equal(t, countBefore, rig.store.PickCount(), "pending pick removed")
	assert.False(t, rig.store.PokemonPicked("garchomp"))
}

func TestMakePickAfterCorrectionGap(t *testing.T) {
	rig := newRig(t, 2, 3, 100)
	ctx := context.Background()

	_, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	require.NoError(t, err)
	second, err := rig.engine.MakePick(ctx, rig.userIDs[1], "dragapult")
	require.NoError(t, err)
	_, err = rig.engine.MakePick(ctx, rig.userIDs[1], "kingambit")
	require.NoError(t, err)

	// A commissioner correction removes the middle pick, leaving a gap in
	// the order sequence.
	rig.store.RemovePick(second.ID)
	require.Equal(t, 2, rig.store.PickCount())

	fourth, err := rig.engine.MakePick(ctx, rig.userIDs[0], "ting-lu")
	require.NoError(t, err)

	assert.Equal(t, 4, fourth.PickOrder, "order continues past the highest, never reusing the gap")

	got, ok := rig.store.Pick(fourth.ID)
	require.True(t, ok, "the pick must land in the store")
	assert.Equal(t, 3, rig.store.PickCount())

	team, _ := rig.store.Team(rig.teams[0].ID)
	assert.Equal(t, 66, team.BudgetRemaining, "budget debit matches the picks actually held")
	assert.Equal(t, 34, rig.engine.Selectors().TeamBudgetUsed(rig.teams[0].ID))
	assert.Equal(t, got.Cost, fourth.Cost)
	require.Len(t, rig.recorder.recorded, 4)
	assert.Equal(t, fourth.ID, rig.recorder.recorded[3].ID, "the persisted pick is the one the store holds")
}

func TestReconcilePendingToConfirmed(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()

	pending, err := rig.engine.MakePick(ctx, rig.userIDs[0], "garchomp")
	require.NoError(t, err)

	confirmed := pending
	confirmed.ID = uuid.New()
	confirmed.Origin = models.PickOriginConfirmed

	rig.engine.ReconcilePick(pending.ID, confirmed)

	_, ok := rig.store.Pick(pending.ID)
	assert.False(t, ok)

	got, ok := rig.store.Pick(confirmed.ID)
	require.True(t, ok)
	assert.Equal(t, models.PickOriginConfirmed, got.Origin)
	assert.Equal(t, 1, rig.store.PickCount())
}

func TestFullSnakeDraftRunsToCompletion(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()

	mons := []string{
		"garchomp", "dragapult", "kingambit", "ting-lu",
		"gholdengo", "pelipper", "clefable", "breloom",
	}
	// Snake order for 4 teams x 2 rounds: ranks 1 2 3 4 4 3 2 1.
	pickers := []int{0, 1, 2, 3, 3, 2, 1, 0}

	for i, idx := range pickers {
		_, err := rig.engine.MakePick(ctx, rig.userIDs[idx], mons[i])
		require.NoError(t, err, "pick %d by team %d", i+1, idx+1)
	}

	sel := rig.engine.Selectors()
	assert.True(t, sel.IsDraftComplete())
	assert.InDelta(t, 100, sel.DraftProgress(), 1e-9)
	assert.Nil(t, sel.CurrentTeam(), "no team on the clock after the final pick")

	for _, team := range rig.teams {
		assert.Equal(t, 2, rig.store.PickCountForTeam(team.ID))
	}
}

func TestAuctionNominateSettle(t *testing.T) {
	rig := newRig(t, 4, 2, 100)
	ctx := context.Background()

	auction, err := rig.engine.NominateAuction(rig.userIDs[1], "dragapult", 12)
	require.NoError(t, err)
	assert.Equal(t, models.AuctionStatusActive, auction.Status)
	assert.Equal(t, rig.teams[1].ID, auction.NominatedByTeamID)

	_, err = rig.engine.NominateAuction(rig.userIDs[2], "kingambit", 5)
	assert.ErrorIs(t, err, ErrAuctionActive)

	pick, err := rig.engine.SettleAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, rig.teams[1].ID, pick.TeamID)
	assert.Equal(t, 12, pick.Cost)
	assert.Equal(t, 1, pick.PickOrder)
	assert.Equal(t, 1, pick.Round, "auction picks carry a round like turn picks")

	team, _ := rig.store.Team(rig.teams[1].ID)
	assert.Equal(t, 88, team.BudgetRemaining)

	_, live := rig.store.CurrentAuction()
	assert.False(t, live)
}

func TestCancelAuction(t *testing.T) {
	rig := newRig(t, 4, 2, 100)

	auction, err := rig.engine.NominateAuction(rig.userIDs[0], "garchomp", 10)
	require.NoError(t, err)

	require.NoError(t, rig.engine.CancelAuction(auction.ID))

	got, ok := rig.store.Auction(auction.ID)
	require.True(t, ok)
	assert.Equal(t, models.AuctionStatusCancelled, got.Status)

	_, live := rig.store.CurrentAuction()
	assert.False(t, live)

	assert.ErrorIs(t, rig.engine.CancelAuction(uuid.New()), ErrAuctionNotFound)
}
