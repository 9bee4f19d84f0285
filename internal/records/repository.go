package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dogwalk/server"
)

// Repository implements server.RecordsStore against Postgres through Pool.
type Repository struct {
	pool *Pool
}

// NewRepository constructs a Repository over pool.
func NewRepository(pool *Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRecord upserts a retired-player record by UUID (§4.7).
func (r *Repository) SaveRecord(ctx context.Context, rec server.RetiredRecord) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Raw().Exec(ctx, `
		INSERT INTO retired_players (id, name, score, play_time_ms)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			score = EXCLUDED.score,
			play_time_ms = EXCLUDED.play_time_ms
	`, rec.UUID, rec.Name, rec.Score, rec.PlayTimeMs)
	if err != nil {
		return fmt.Errorf("upsert retired player %s: %w", rec.UUID, err)
	}
	return nil
}

// GetRecords returns a page of the retirement leaderboard ordered by
// (score DESC, play_time_ms ASC, name ASC), starting at offset start and
// returning at most maxItems rows. The caller (the HTTP layer) enforces
// 0<=start and 0<=maxItems<=100 before calling this (§4.7).
func (r *Repository) GetRecords(ctx context.Context, start, maxItems int) ([]server.RetiredRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Raw().Query(ctx, `
		SELECT id, name, score, play_time_ms
		FROM retired_players
		ORDER BY score DESC, play_time_ms ASC, name ASC
		OFFSET $1 LIMIT $2
	`, start, maxItems)
	if err != nil {
		return nil, fmt.Errorf("query retired players: %w", err)
	}
	defer rows.Close()

	var out []server.RetiredRecord
	for rows.Next() {
		var (
			id         uuid.UUID
			name       string
			score      int
			playTimeMs int64
		)
		if err := rows.Scan(&id, &name, &score, &playTimeMs); err != nil {
			return nil, fmt.Errorf("scan retired player row: %w", err)
		}
		out = append(out, server.RetiredRecord{UUID: id, Name: name, Score: score, PlayTimeMs: playTimeMs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate retired player rows: %w", err)
	}
	return out, nil
}
