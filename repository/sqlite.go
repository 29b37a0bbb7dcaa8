package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/db"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// SQLiteDB wraps a SQL database connection for SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the dataset store written by the importer
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	conn, err := sql.Open("sqlite", db.DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: conn}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sql.DB {
	return s.db
}

// SQLiteStationRepository reads the latest dataset version from SQLite
type SQLiteStationRepository struct {
	db *sql.DB
}

// NewSQLiteStationRepository creates a new SQLiteStationRepository
func NewSQLiteStationRepository(db *sql.DB) *SQLiteStationRepository {
	return &SQLiteStationRepository{db: db}
}

// Name identifies the source in health responses
func (r *SQLiteStationRepository) Name() string {
	return "sqlite"
}

// Ping checks the database connection
func (r *SQLiteStationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// LatestVersion returns the id of the most recent import
func (r *SQLiteStationRepository) LatestVersion(ctx context.Context) (string, error) {
	var versionID string
	err := r.db.QueryRowContext(ctx, `
		SELECT version_id
		FROM dataset_versions
		ORDER BY imported_at_utc DESC, rowid DESC
		LIMIT 1
	`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoDataset
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest dataset version: %w", err)
	}
	return versionID, nil
}

// LoadStations returns the stations of the latest version in dataset order
func (r *SQLiteStationRepository) LoadStations(ctx context.Context) ([]models.Station, dataset.Report, error) {
	versionID, err := r.LatestVersion(ctx)
	if err != nil {
		return nil, dataset.Report{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			station_id,
			name,
			line,
			longitude,
			latitude,
			address,
			info,
			connections
		FROM stations
		WHERE version_id = ?
		ORDER BY position
	`, versionID)
	if err != nil {
		return nil, dataset.Report{}, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, dataset.Report{}, err
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dataset.Report{}, fmt.Errorf("error iterating stations: %w", err)
	}

	return stations, dataset.Report{Loaded: len(stations)}, nil
}

// LoadLines returns the line geometries of the latest version
func (r *SQLiteStationRepository) LoadLines(ctx context.Context) ([]models.LineGeometry, error) {
	versionID, err := r.LatestVersion(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT line, color, length_meters, geometry
		FROM line_geometries
		WHERE version_id = ?
		ORDER BY line
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []models.LineGeometry
	for rows.Next() {
		lg, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, lg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lines: %w", err)
	}

	return lines, nil
}
