// Command import-stations loads a Subte dataset into the SQLite store read
// by the API. The dataset comes from a GTFS feed (-gtfs) or from GeoJSON
// files, defaulting to the dataset embedded in the binary.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/config"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/db"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/gtfs"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/subte"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/repository"
)

func main() {
	config.LoadDotEnv(".")
	cfg := config.Load()

	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite database")
	stationsPath := flag.String("stations", "", "Station GeoJSON file (default: embedded dataset)")
	linesPath := flag.String("lines", "", "Line GeoJSON file (default: embedded dataset)")
	gtfsPath := flag.String("gtfs", "", "Subte GTFS zip; overrides -stations and -lines")
	outDir := flag.String("out", "", "With -gtfs, also write the generated GeoJSON into this directory")
	keep := flag.Int("keep", 3, "Number of dataset versions to keep (0 keeps all)")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logger.Init(logCfg)

	ctx := context.Background()

	source, stations, lines, err := loadDataset(ctx, *gtfsPath, *outDir, *stationsPath, *linesPath)
	if err != nil {
		logger.Fatal("Failed to load dataset", "error", err)
	}

	database, err := db.Connect(*dbPath)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure schema", "error", err)
	}

	versionID, err := database.ImportDataset(ctx, source, stations, lines)
	if err != nil {
		logger.Fatal("Failed to import dataset", "error", err)
	}
	logger.Info("Dataset imported",
		"version", versionID,
		"source", source,
		"stations", len(stations),
		"lines", len(lines),
		"db", *dbPath,
	)

	if *keep > 0 {
		pruned, err := database.PruneVersions(ctx, *keep)
		if err != nil {
			logger.Error("Failed to prune old versions", "error", err)
			return
		}
		if pruned > 0 {
			logger.Info("Pruned old dataset versions", "count", pruned)
		}
	}
}

// loadDataset returns the source label plus the parsed stations and lines
func loadDataset(ctx context.Context, gtfsPath, outDir, stationsPath, linesPath string) (string, []models.Station, []models.LineGeometry, error) {
	if gtfsPath != "" {
		data, err := gtfs.Parse(gtfsPath)
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to parse GTFS: %w", err)
		}
		if outDir != "" {
			if _, err := subte.Generate(data, outDir); err != nil {
				return "", nil, nil, err
			}
		}
		result, err := subte.Build(data)
		if err != nil {
			return "", nil, nil, err
		}
		return "gtfs", result.Stations, result.Lines, nil
	}

	repo := repository.NewGeoJSONRepository(stationsPath, linesPath)
	stations, report, err := repo.LoadStations(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	if len(report.Skipped) > 0 {
		logger.Warn("Some station records were skipped", "count", len(report.Skipped))
	}
	lines, err := repo.LoadLines(ctx)
	if err != nil {
		return "", nil, nil, err
	}
	return repo.Name(), stations, lines, nil
}
