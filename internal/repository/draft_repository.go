package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftdex/draftdex/internal/models"
	"github.com/draftdex/draftdex/internal/store"
)

// ErrDraftNotFound is returned when a draft does not exist or has been
// soft-deleted.
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository reads and writes draft rows and assembles session
// snapshots for cold starts.
type DraftRepository struct {
	pool *pgxpool.Pool
}

// NewDraftRepository wraps a connection pool.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

// CreateDraft inserts a draft with its settings stored as JSONB.
func (r *DraftRepository) CreateDraft(ctx context.Context, draft models.Draft) error {
	settings, err := json.Marshal(draft.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal draft settings: %w", err)
	}

	const q = `
		INSERT INTO drafts (id, room_code, draft_type, status, current_turn, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`

	if _, err := r.pool.Exec(ctx, q,
		draft.ID, draft.RoomCode, draft.DraftType, draft.Status, draft.CurrentTurn, settings); err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// GetDraftByRoomCode loads a draft. Soft-deleted drafts are not returned.
func (r *DraftRepository) GetDraftByRoomCode(ctx context.Context, roomCode string) (models.Draft, error) {
	const q = `
		SELECT id, room_code, draft_type, status, current_turn, settings, created_at, updated_at
		FROM drafts
		WHERE room_code = $1 AND deleted_at IS NULL`

	var d models.Draft
	var settings []byte
	err := r.pool.QueryRow(ctx, q, roomCode).Scan(
		&d.ID, &d.RoomCode, &d.DraftType, &d.Status, &d.CurrentTurn, &settings, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return models.Draft{}, fmt.Errorf("failed to get draft: %w", err)
	}
	if err := json.Unmarshal(settings, &d.Settings); err != nil {
		return models.Draft{}, fmt.Errorf("failed to unmarshal draft settings: %w", err)
	}
	return d, nil
}

// UpdateDraftStatus transitions a draft's lifecycle state and turn counter.
func (r *DraftRepository) UpdateDraftStatus(ctx context.Context, draft models.Draft) error {
	const q = `
		UPDATE drafts
		SET status = $2, current_turn = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, q, draft.ID, draft.Status, draft.CurrentTurn)
	if err != nil {
		return fmt.Errorf("failed to update draft status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// SoftDeleteDraft marks a draft deleted without dropping its history.
func (r *DraftRepository) SoftDeleteDraft(ctx context.Context, roomCode string) error {
	const q = `
		UPDATE drafts
		SET status = $2, deleted_at = NOW(), updated_at = NOW()
		WHERE room_code = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, q, roomCode, models.DraftStatusDeleted)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// LoadSnapshot assembles a full session snapshot for a room, used to warm a
// session store before the live feed takes over.
func (r *DraftRepository) LoadSnapshot(ctx context.Context, roomCode string) (store.Snapshot, error) {
	draft, err := r.GetDraftByRoomCode(ctx, roomCode)
	if err != nil {
		return store.Snapshot{}, err
	}

	teams, err := r.listTeams(ctx, draft.ID)
	if err != nil {
		return store.Snapshot{}, err
	}
	participants, err := r.listParticipants(ctx, draft.ID)
	if err != nil {
		return store.Snapshot{}, err
	}
	picks, err := NewPickRepository(r.pool).ListPicks(ctx, draft.ID)
	if err != nil {
		return store.Snapshot{}, err
	}

	return store.Snapshot{
		Draft:        &draft,
		Teams:        teams,
		Participants: participants,
		Picks:        picks,
	}, nil
}

func (r *DraftRepository) listTeams(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	const q = `
		SELECT id, draft_id, name, draft_order, budget_remaining, participant_id
		FROM teams
		WHERE draft_id = $1
		ORDER BY draft_order`

	rows, err := r.pool.Query(ctx, q, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.DraftID, &t.Name, &t.DraftOrder, &t.BudgetRemaining, &t.ParticipantID); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read teams: %w", err)
	}
	return teams, nil
}

func (r *DraftRepository) listParticipants(ctx context.Context, draftID uuid.UUID) ([]models.Participant, error) {
	const q = `
		SELECT id, draft_id, user_id, display_name, is_host, is_admin, is_spectator, online, last_seen_at
		FROM participants
		WHERE draft_id = $1`

	rows, err := r.pool.Query(ctx, q, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DraftID, &p.UserID, &p.DisplayName,
			&p.IsHost, &p.IsAdmin, &p.IsSpectator, &p.Online, &p.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return participants, nil
}
