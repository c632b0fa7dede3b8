package records

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, kind, task_id, filename, fingerprint, target, phase, failure, finished_at FROM local_records`

func (r *SQLiteRepository) Save(ctx context.Context, rec *models.LocalRecord) error {
	query := `INSERT INTO local_records (id, kind, task_id, filename, fingerprint, target, phase, failure, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				task_id = excluded.task_id,
				filename = excluded.filename,
				fingerprint = excluded.fingerprint,
				target = excluded.target,
				phase = excluded.phase,
				failure = excluded.failure,
				finished_at = excluded.finished_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.ID, string(rec.Kind), rec.TaskID, rec.Filename, rec.Fingerprint,
		rec.Target, string(rec.Phase), rec.Failure, rec.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.LocalRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, selectColumns+` ORDER BY finished_at DESC, id LIMIT ?`, limit)
}

func (r *SQLiteRepository) FindByFingerprint(ctx context.Context, fingerprint string) ([]models.LocalRecord, error) {
	return r.query(ctx, selectColumns+` WHERE fingerprint = ? ORDER BY finished_at DESC, id`, fingerprint)
}

func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM local_records WHERE id NOT IN (
			SELECT id FROM local_records ORDER BY finished_at DESC, id LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.LocalRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []models.LocalRecord
	for rows.Next() {
		var (
			rec        models.LocalRecord
			kind       string
			phase      string
			finishedAt int64
		)
		if err := rows.Scan(&rec.ID, &kind, &rec.TaskID, &rec.Filename, &rec.Fingerprint,
			&rec.Target, &phase, &rec.Failure, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Kind = models.Kind(kind)
		rec.Phase = models.Phase(phase)
		rec.FinishedAt = time.UnixMilli(finishedAt).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return out, nil
}
