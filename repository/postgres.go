package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// StationRepository reads the latest dataset version from Postgres. The
// tables match the SQLite store.
type StationRepository struct {
	pool *pgxpool.Pool
}

func NewStationRepository(databaseURL string) (*StationRepository, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &StationRepository{pool: pool}, nil
}

func (r *StationRepository) Close() {
	r.pool.Close()
}

func (r *StationRepository) Name() string {
	return "postgres"
}

func (r *StationRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *StationRepository) LatestVersion(ctx context.Context) (string, error) {
	var versionID string
	err := r.pool.QueryRow(ctx, `
		SELECT version_id
		FROM dataset_versions
		ORDER BY imported_at_utc DESC, version_id DESC
		LIMIT 1
	`).Scan(&versionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoDataset
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest dataset version: %w", err)
	}
	return versionID, nil
}

func (r *StationRepository) LoadStations(ctx context.Context) ([]models.Station, dataset.Report, error) {
	versionID, err := r.LatestVersion(ctx)
	if err != nil {
		return nil, dataset.Report{}, err
	}

	query := `
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
		WHERE version_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, versionID)
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

func (r *StationRepository) LoadLines(ctx context.Context) ([]models.LineGeometry, error) {
	versionID, err := r.LatestVersion(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT line, color, length_meters, geometry
		FROM line_geometries
		WHERE version_id = $1
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
