// Package history caches the remote conversion and compression listings in
// the local store.
//
// The cache keeps one ordered snapshot per kind. ReplaceAll swaps a kind's
// snapshot inside one transaction, so readers see either the old or the new
// listing and never a mix. List returns rows in the order the server sent
// them.
//
//	repo := history.NewSQLiteRepository(db)
//	_ = repo.ReplaceAll(ctx, models.KindConversion, items)
//	cached, _ := repo.List(ctx, models.KindConversion, 50)
package history
