// Package records implements the leaderboard repository (C9): an
// append-and-query store over a relational database, accessed through a
// bounded connection pool whose blocking Acquire mirrors
// original_source's connection_pool.h.
package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// maxPageSize is the hard ceiling on GetRecords pagination, matching
// spec.md §4.9/§7's maxItems<=100 rule; the API layer rejects
// maxItems>100 before ever reaching the repository, this is a defensive
// second line of defense.
const maxPageSize = 100

const schemaSQL = `
CREATE TABLE IF NOT EXISTS retired_players (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	score INTEGER NOT NULL,
	play_time DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS retired_players_score_idx ON retired_players (score DESC);
CREATE INDEX IF NOT EXISTS retired_players_play_time_idx ON retired_players (play_time ASC);
CREATE INDEX IF NOT EXISTS retired_players_name_idx ON retired_players (name ASC);
`

// Record is one leaderboard row.
type Record struct {
	Name            string
	Score           int
	PlayTimeSeconds float64
}

// Repository is a pgx-backed leaderboard store.
type Repository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewRepository connects to dbURL, verifies the schema exists (creating
// it if necessary) and returns a Repository. pgxpool's own Acquire
// blocks callers when the pool is exhausted, giving the same
// back-pressure connection_pool.h's condition-variable wait provides.
func NewRepository(ctx context.Context, dbURL string, logger *zap.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("records: connect: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("records: ensure schema: %w", err)
	}

	return &Repository{pool: pool, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// SaveRecord appends one leaderboard row. Callers (the retirement
// sweep, C5) guarantee at-most-once via a per-dog recorded flag; this
// is always a plain INSERT, never an upsert.
func (r *Repository) SaveRecord(name string, score int, playTimeSeconds float64) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO retired_players (name, score, play_time) VALUES ($1, $2, $3)`,
		name, score, playTimeSeconds,
	)
	if err != nil {
		return fmt.Errorf("records: save record for %q: %w", name, err)
	}
	return nil
}

// GetRecords returns a page of the leaderboard ordered by
// score DESC, play_time ASC, name ASC, starting at offset start and
// returning at most maxItems rows.
func (r *Repository) GetRecords(start, maxItems int) ([]Record, error) {
	start, maxItems = clampPage(start, maxItems)

	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT name, score, play_time FROM retired_players
		 ORDER BY score DESC, play_time ASC, name ASC
		 OFFSET $1 LIMIT $2`,
		start, maxItems,
	)
	if err != nil {
		return nil, fmt.Errorf("records: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Score, &rec.PlayTimeSeconds); err != nil {
			return nil, fmt.Errorf("records: scan row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate rows: %w", err)
	}
	return out, nil
}

// clampPage enforces GetRecords' pagination bounds independent of the
// database round trip, so it can be unit tested without a connection.
func clampPage(start, maxItems int) (int, int) {
	if maxItems > maxPageSize {
		maxItems = maxPageSize
	}
	if maxItems < 0 {
		maxItems = 0
	}
	if start < 0 {
		start = 0
	}
	return start, maxItems
}
