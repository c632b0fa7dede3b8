package history

import (
	"context"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/dbx"
)

type Repository interface {
	// ReplaceAll makes items, in order, the cached listing of kind.
	ReplaceAll(ctx context.Context, kind models.Kind, items []models.HistoryItem) error

	// List returns at most limit cached rows of kind; limit <= 0 means all.
	List(ctx context.Context, kind models.Kind, limit int) ([]models.HistoryItem, error)
}

// DB is what the SQLite repository needs from *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}
