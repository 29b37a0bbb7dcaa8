package repository

import (
	"context"
	"os"
	"testing"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/db"
)

func setupTestRepository(t *testing.T) *StationRepository {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	repo, err := NewStationRepository(databaseURL)
	if err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}

	return repo
}

func TestPostgresLoadStations(t *testing.T) {
	repo := setupTestRepository(t)
	defer repo.Close()

	ctx := context.Background()
	if _, err := repo.pool.Exec(ctx, db.SchemaSQL()); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	versionID := "00000000-0000-0000-0000-00000000beef"
	t.Cleanup(func() {
		repo.pool.Exec(context.Background(), "DELETE FROM stations WHERE version_id = $1", versionID)
		repo.pool.Exec(context.Background(), "DELETE FROM line_geometries WHERE version_id = $1", versionID)
		repo.pool.Exec(context.Background(), "DELETE FROM dataset_versions WHERE version_id = $1", versionID)
	})

	statements := []struct {
		query string
		args  []interface{}
	}{
		{
			`INSERT INTO dataset_versions (version_id, source, imported_at_utc, station_count, line_count)
			 VALUES ($1, 'integration', '9999-12-31T23:59:59.000000Z', 1, 1)`,
			[]interface{}{versionID},
		},
		{
			`INSERT INTO stations (version_id, station_id, position, name, line, longitude, latitude, connections)
			 VALUES ($1, 45, 0, 'Catedral', 'D', -58.3738, -34.6075, 'A,E')`,
			[]interface{}{versionID},
		},
		{
			`INSERT INTO line_geometries (version_id, line, color, length_meters, geometry)
			 VALUES ($1, 'D', '#02DB2E', 10.5, '{"type":"LineString","coordinates":[[-58.37,-34.60],[-58.38,-34.59]]}')`,
			[]interface{}{versionID},
		},
	}
	for _, s := range statements {
		if _, err := repo.pool.Exec(ctx, s.query, s.args...); err != nil {
			t.Fatalf("Failed to seed dataset: %v", err)
		}
	}

	stations, _, err := repo.LoadStations(ctx)
	if err != nil {
		t.Fatalf("LoadStations failed: %v", err)
	}
	if len(stations) != 1 || stations[0].Name != "Catedral" || len(stations[0].Connections) != 2 {
		t.Errorf("stations = %+v", stations)
	}

	lines, err := repo.LoadLines(ctx)
	if err != nil {
		t.Fatalf("LoadLines failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Color != "#02DB2E" {
		t.Errorf("lines = %+v", lines)
	}
}
