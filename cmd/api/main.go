package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/config"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/dataset"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/interaction"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/session"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/subte"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/stationindex"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/repository"
)

// datasetSource is implemented by every repository
type datasetSource interface {
	Name() string
	Ping(ctx context.Context) error
	LoadStations(ctx context.Context) ([]models.Station, dataset.Report, error)
	LoadLines(ctx context.Context) ([]models.LineGeometry, error)
}

func main() {
	config.LoadDotEnv(".")
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.FilePath = cfg.LogFile
	logger.Init(logCfg)

	style, err := config.LoadMapStyle(cfg.MapStyleFile)
	if err != nil {
		logger.Fatal("Failed to load map style", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := static.RefreshIfStale(ctx, cfg); err != nil {
		// keep serving whatever dataset is available
		logger.Warn("Static data refresh failed", "error", err)
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		logger.Fatal("Failed to open dataset source", "error", err)
	}
	defer closeSource()

	// The index must be complete before the first request is served
	stations, report, err := source.LoadStations(ctx)
	if err != nil {
		logger.Fatal("Failed to load stations", "source", source.Name(), "error", err)
	}
	lines, err := source.LoadLines(ctx)
	if err != nil {
		logger.Warn("Failed to load line geometries, serving stations only", "source", source.Name(), "error", err)
	}
	loadedAt := time.Now().UTC()

	index := stationindex.New(stations)
	logger.Info("Dataset loaded",
		"source", source.Name(),
		"stations", index.Len(),
		"skipped", len(report.Skipped),
		"lines", len(lines),
	)

	store := session.NewStore(index, cfg.SessionTTL, interaction.WithFocusZoom(style.Focus.Zoom))

	router := newRouter(cfg, routeDeps{
		index:    index,
		lines:    lines,
		style:    style,
		sessions: store,
		source:   source,
		loadedAt: loadedAt,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// openSource picks the dataset source: Postgres when DATABASE_URL is set,
// then an existing SQLite store, then GeoJSON files (explicit paths, the
// generated dataset, or the embedded default)
func openSource(cfg *config.Config) (datasetSource, func(), error) {
	if cfg.DatabaseURL != "" {
		repo, err := repository.NewStationRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Postgres dataset source")
		return repo, repo.Close, nil
	}

	if cfg.SQLitePath != "" {
		if _, err := os.Stat(cfg.SQLitePath); err == nil {
			sqliteDB, err := repository.NewSQLiteDB(cfg.SQLitePath)
			if err != nil {
				return nil, nil, err
			}
			repo := repository.NewSQLiteStationRepository(sqliteDB.GetDB())
			version, err := repo.LatestVersion(context.Background())
			if err == nil {
				logger.Info("Using SQLite dataset source", "path", cfg.SQLitePath, "version", version)
				return repo, func() { sqliteDB.Close() }, nil
			}
			sqliteDB.Close()
			if !errors.Is(err, repository.ErrNoDataset) {
				return nil, nil, err
			}
			logger.Warn("SQLite store has no dataset, falling back to GeoJSON", "path", cfg.SQLitePath)
		}
	}

	stationsPath, linesPath := cfg.StationsGeoJSON, cfg.LinesGeoJSON
	if stationsPath == "" && linesPath == "" {
		generated := filepath.Join(cfg.WebPublicDir, subte.StationsFile)
		if _, err := os.Stat(generated); err == nil {
			stationsPath = generated
			linesPath = filepath.Join(cfg.WebPublicDir, subte.LinesFile)
		}
	}

	repo := repository.NewGeoJSONRepository(stationsPath, linesPath)
	logger.Info("Using GeoJSON dataset source", "source", repo.Name(), "stations", stationsPath, "lines", linesPath)
	return repo, func() {}, nil
}
