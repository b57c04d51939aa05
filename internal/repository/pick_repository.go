// Package repository persists draft state to Postgres. It is the backend of
// record behind the session engine's optimistic applies.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftdex/draftdex/internal/models"
)

// PickRepository records and deletes picks. It satisfies the session
// engine's PickRecorder.
type PickRepository struct {
	pool *pgxpool.Pool
}

// NewPickRepository wraps a connection pool.
func NewPickRepository(pool *pgxpool.Pool) *PickRepository {
	return &PickRepository{pool: pool}
}

// RecordPick inserts a pick. The unique constraint on (draft_id, pick_order)
// is the backend's last line of defense against double picks; a violation
// surfaces as an error and triggers the caller's rollback.
func (r *PickRepository) RecordPick(ctx context.Context, pick models.Pick) error {
	const q = `
		INSERT INTO picks (id, draft_id, team_id, pokemon_id, pokemon_name, cost, pick_order, round, picked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, q,
		pick.ID, pick.DraftID, pick.TeamID, pick.PokemonID, pick.PokemonName,
		pick.Cost, pick.PickOrder, pick.Round, pick.PickedAt)
	if err != nil {
		return fmt.Errorf("failed to record pick: %w", err)
	}
	return nil
}

// DeletePick removes a pick record.
func (r *PickRepository) DeletePick(ctx context.Context, pickID uuid.UUID) error {
	const q = `DELETE FROM picks WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, pickID)
	if err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pick %s not found", pickID)
	}
	return nil
}

// ListPicks returns a draft's picks in pick order.
func (r *PickRepository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	const q = `
		SELECT id, draft_id, team_id, pokemon_id, pokemon_name, cost, pick_order, round, picked_at
		FROM picks
		WHERE draft_id = $1
		ORDER BY pick_order`

	rows, err := r.pool.Query(ctx, q, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	var picks []models.Pick
	for rows.Next() {
		var p models.Pick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.TeamID, &p.PokemonID, &p.PokemonName,
			&p.Cost, &p.PickOrder, &p.Round, &p.PickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		p.Origin = models.PickOriginConfirmed
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read picks: %w", err)
	}
	return picks, nil
}
