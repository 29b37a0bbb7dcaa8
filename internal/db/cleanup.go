package db

import (
	"context"
	"fmt"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
)

// PruneVersions deletes all but the newest keep dataset versions and
// returns how many versions were removed
func (db *DB) PruneVersions(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stale := `
		SELECT version_id FROM dataset_versions
		ORDER BY imported_at_utc DESC, rowid DESC
		LIMIT -1 OFFSET ?
	`

	// Children first: the cascade only runs on connections with foreign_keys on
	queries := []struct {
		name  string
		query string
	}{
		{name: "stations", query: "DELETE FROM stations WHERE version_id IN (" + stale + ")"},
		{name: "line_geometries", query: "DELETE FROM line_geometries WHERE version_id IN (" + stale + ")"},
		{name: "dataset_versions", query: "DELETE FROM dataset_versions WHERE version_id IN (" + stale + ")"},
	}

	var removed int64
	for _, q := range queries {
		result, err := tx.ExecContext(ctx, q.query, keep)
		if err != nil {
			return 0, fmt.Errorf("failed to prune %s: %w", q.name, err)
		}
		if q.name == "dataset_versions" {
			removed, _ = result.RowsAffected()
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	if removed > 0 {
		logger.Info("Pruned dataset versions", "removed", removed, "kept", keep)
	}
	return int(removed), nil
}
