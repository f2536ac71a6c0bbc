package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// Batch is a stored batch classification run.
type Batch struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	SourceName   string
	ArticleCount int
	Results      []classify.Prediction
	CreatedAt    time.Time
}

// CreateBatchParams contains parameters for storing a batch run.
type CreateBatchParams struct {
	UserID     uuid.UUID
	SourceName string
	Results    []classify.Prediction
}

const batchColumns = `id, user_id, source_name, article_count, results, created_at`

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	var resultsJSON []byte
	err := row.Scan(&b.ID, &b.UserID, &b.SourceName, &b.ArticleCount, &resultsJSON, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resultsJSON, &b.Results); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBatch stores a completed batch run with its full results.
func (db *DB) CreateBatch(ctx context.Context, params CreateBatchParams) (*Batch, error) {
	resultsJSON, err := json.Marshal(params.Results)
	if err != nil {
		return nil, err
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO batches (user_id, source_name, article_count, results)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+batchColumns,
		params.UserID, params.SourceName, len(params.Results), resultsJSON,
	)
	return scanBatch(row)
}

// GetBatchByID retrieves a batch by ID.
func (db *DB) GetBatchByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE id = $1`,
		id,
	)
	return scanBatch(row)
}

// BatchSummary is a batch without its result rows, for listings.
type BatchSummary struct {
	ID           uuid.UUID
	SourceName   string
	ArticleCount int
	CreatedAt    time.Time
}

// ListUserBatches returns batch summaries for a user, newest first.
func (db *DB) ListUserBatches(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BatchSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, source_name, article_count, created_at FROM batches
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		if err := rows.Scan(&b.ID, &b.SourceName, &b.ArticleCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// CountUserArticlesSince sums the articles a user has classified since a
// given time. Used for monthly quota enforcement.
func (db *DB) CountUserArticlesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(article_count), 0) FROM batches
		 WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

// DeleteBatch deletes a batch by ID.
func (db *DB) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM batches WHERE id = $1`,
		id,
	)
	return err
}

// DeleteOldBatches deletes batches older than the given cutoff and returns
// how many were removed.
func (db *DB) DeleteOldBatches(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM batches WHERE created_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
