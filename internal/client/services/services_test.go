package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fileconv/internal/client/client"
	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func completedTask(op models.Operation, handle string) models.Task {
	return models.Task{
		Operation:       op,
		TaskID:          "task-1",
		Phase:           models.PhaseCompleted,
		OverallProgress: 100,
		PhaseProgress:   100,
		ResultHandle:    handle,
	}
}
