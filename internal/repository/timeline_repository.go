package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"relume/api/internal/models"
)

type TimelineRepository struct {
	pool *pgxpool.Pool
}

func NewTimelineRepository(pool *pgxpool.Pool) *TimelineRepository {
	return &TimelineRepository{pool: pool}
}

// EnsureSchema bootstraps the timeline table. The advisory lock serializes
// DDL across concurrently starting instances.
func (r *TimelineRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(7358001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS timeline_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	blob_url TEXT NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	logical_id TEXT NOT NULL DEFAULT '',
	version TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL DEFAULT '',
	tags JSONB,
	raw_vision JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_timeline_entries_user_created
	ON timeline_entries (user_id, created_at DESC);
`
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	return tx.Commit(ctx)
}

// Append inserts exactly one entry. There is no dedup guard: resubmitting
// the same upload payload creates a second row.
func (r *TimelineRepository) Append(ctx context.Context, entry models.TimelineEntry) error {
	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	const query = `
		INSERT INTO timeline_entries (
			id, user_id, blob_url, content_hash, logical_id, version,
			caption, tags, raw_vision, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.BlobURL,
		entry.ContentHash,
		entry.LogicalID,
		entry.Version,
		entry.Caption,
		tagsJSON,
		entry.RawVision,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert timeline entry: %w", err)
	}
	return nil
}

// ListByUser returns every entry for the user, newest first. That is the
// only supported ordering; pagination is out of scope.
func (r *TimelineRepository) ListByUser(ctx context.Context, userID string) ([]models.TimelineEntry, error) {
	const query = `
		SELECT id, user_id, blob_url, content_hash, logical_id, version,
		       caption, tags, raw_vision, created_at
		FROM timeline_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	defer rows.Close()

	entries := make([]models.TimelineEntry, 0)
	for rows.Next() {
		var entry models.TimelineEntry
		var tagsJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.BlobURL,
			&entry.ContentHash,
			&entry.LogicalID,
			&entry.Version,
			&entry.Caption,
			&tagsJSON,
			&entry.RawVision,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &entry.Tags); err != nil {
				entry.Tags = nil
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
