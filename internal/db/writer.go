package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// DatasetVersion describes one import
type DatasetVersion struct {
	VersionID    string
	Source       string
	ImportedAt   time.Time
	StationCount int
	LineCount    int
}

// ImportDataset stores stations and line geometries as a new dataset
// version in a single transaction and returns the version id. Station
// positions preserve the given (dataset) order.
func (db *DB) ImportDataset(ctx context.Context, source string, stations []models.Station, lines []models.LineGeometry) (string, error) {
	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	versionID := uuid.New().String()
	importedAt := time.Now().UTC().Format(TimeLayout)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO dataset_versions (version_id, source, imported_at_utc, station_count, line_count)
		 VALUES (?, ?, ?, ?, ?)`,
		versionID, source, importedAt, len(stations), len(lines),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create dataset version: %w", err)
	}

	stationStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (
			version_id, station_id, position, name, line,
			longitude, latitude, address, info, connections
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare station insert: %w", err)
	}
	defer stationStmt.Close()

	for i, s := range stations {
		_, err := stationStmt.ExecContext(ctx,
			versionID, s.ID, i, s.Name, string(s.Line),
			s.Coordinates.Lon(), s.Coordinates.Lat(),
			s.Address, s.Info, JoinConnections(s.Connections),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert station %d: %w", s.ID, err)
		}
	}

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO line_geometries (version_id, line, color, length_meters, geometry)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer lineStmt.Close()

	for _, l := range lines {
		geometry, err := geojson.NewGeometry(l.Coordinates).MarshalJSON()
		if err != nil {
			return "", fmt.Errorf("failed to encode geometry of line %s: %w", l.Line, err)
		}
		if _, err := lineStmt.ExecContext(ctx, versionID, string(l.Line), l.Color, l.LengthMeters, string(geometry)); err != nil {
			return "", fmt.Errorf("failed to insert line %s: %w", l.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit dataset: %w", err)
	}

	return versionID, nil
}

// ListVersions returns the stored dataset versions, newest first
func (db *DB) ListVersions(ctx context.Context) ([]DatasetVersion, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT version_id, source, imported_at_utc, station_count, line_count
		FROM dataset_versions
		ORDER BY imported_at_utc DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset versions: %w", err)
	}
	defer rows.Close()

	var versions []DatasetVersion
	for rows.Next() {
		var v DatasetVersion
		var importedAt string
		if err := rows.Scan(&v.VersionID, &v.Source, &importedAt, &v.StationCount, &v.LineCount); err != nil {
			return nil, fmt.Errorf("failed to scan dataset version: %w", err)
		}
		if v.ImportedAt, err = time.Parse(TimeLayout, importedAt); err != nil {
			return nil, fmt.Errorf("invalid imported_at_utc %q: %w", importedAt, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// JoinConnections encodes transfer lines for the connections column
func JoinConnections(lines []models.Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}
