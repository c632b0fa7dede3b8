package records

import (
	"context"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

type Repository interface {
	// Save inserts or replaces the record with r.ID.
	Save(ctx context.Context, r *models.LocalRecord) error

	// List returns the newest records first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.LocalRecord, error)

	// FindByFingerprint returns records of the same content, newest first.
	FindByFingerprint(ctx context.Context, fingerprint string) ([]models.LocalRecord, error)

	// Prune keeps the newest keep records and returns how many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
