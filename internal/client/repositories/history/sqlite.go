package history

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/dbx"
)

type SQLiteRepository struct {
	db DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, kind models.Kind, items []models.HistoryItem) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		args := make([]any, 0, len(items)+1)
		args = append(args, string(kind))
		query := `DELETE FROM history_cache WHERE kind = ?`
		if len(items) > 0 {
			for _, it := range items {
				args = append(args, it.ID)
			}
			query += ` AND id NOT IN (` + dbx.Placeholders(len(items)) + `)`
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to prune %s history: %w", kind, err)
		}

		for i, it := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO history_cache (kind, id, position, original_filename, source_format, target,
					status, error_message, size_bytes, result_size_bytes, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(kind, id) DO UPDATE SET
					position = excluded.position,
					original_filename = excluded.original_filename,
					source_format = excluded.source_format,
					target = excluded.target,
					status = excluded.status,
					error_message = excluded.error_message,
					size_bytes = excluded.size_bytes,
					result_size_bytes = excluded.result_size_bytes,
					created_at = excluded.created_at
			`, string(kind), it.ID, i, it.OriginalFilename, it.SourceFormat, it.Target,
				it.Status, it.ErrorMessage, it.SizeBytes, it.ResultSizeBytes, it.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to cache %s %s: %w", kind, it.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) List(ctx context.Context, kind models.Kind, limit int) ([]models.HistoryItem, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, original_filename, source_format, target, status, error_message,
			size_bytes, result_size_bytes, created_at
		FROM history_cache
		WHERE kind = ?
		ORDER BY position
		LIMIT ?
	`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s history: %w", kind, err)
	}
	defer rows.Close()

	var items []models.HistoryItem
	for rows.Next() {
		it := models.HistoryItem{Kind: kind}
		if err := rows.Scan(&it.ID, &it.OriginalFilename, &it.SourceFormat, &it.Target, &it.Status,
			&it.ErrorMessage, &it.SizeBytes, &it.ResultSizeBytes, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return items, nil
}
