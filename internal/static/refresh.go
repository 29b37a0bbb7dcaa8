// Package static keeps the GTFS-derived GeoJSON datasets up to date.
package static

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/config"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/logger"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/gtfs"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/static/subte"
)

// Manifest is the subset of manifest.json needed for freshness checks
type Manifest struct {
	UpdatedAt        string `json:"updated_at,omitempty"`
	GeneratedAt      string `json:"generated_at,omitempty"`
	GeneratorVersion string `json:"generator_version,omitempty"`
}

// ManifestPath returns the manifest location for the generated dataset
func ManifestPath(cfg *config.Config) string {
	return filepath.Join(cfg.WebPublicDir, subte.ManifestFile)
}

// RefreshIfStale regenerates the GeoJSON datasets under cfg.WebPublicDir
// when the manifest is missing, older than cfg.StaticRefreshDays or written
// by another generator version. It reports whether a refresh happened.
func RefreshIfStale(ctx context.Context, cfg *config.Config) (bool, error) {
	manifestPath := ManifestPath(cfg)

	stale := isStaleOrMissing(manifestPath, cfg.StaticRefreshDays)
	if v := getStoredGeneratorVersion(manifestPath); v != subte.GeneratorVersion {
		stale = true
	}
	if !stale {
		logger.Info("Static data is fresh, skipping refresh", "manifest", manifestPath)
		return false, nil
	}

	if cfg.GTFSURL == "" {
		logger.Info("GTFS_URL not configured, skipping static refresh")
		return false, nil
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return false, err
	}

	logger.Info("Refreshing Subte static data", "url", cfg.GTFSURL)

	zipPath := filepath.Join(cfg.CacheDir, "subte_gtfs.zip")
	if err := gtfs.Download(ctx, cfg.GTFSURL, zipPath); err != nil {
		return false, err
	}

	data, err := gtfs.Parse(zipPath)
	if err != nil {
		return false, err
	}

	if _, err := subte.Generate(data, cfg.WebPublicDir); err != nil {
		return false, err
	}

	return true, nil
}

func readManifest(manifestPath string) (Manifest, bool) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Manifest{}, false
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, false
	}
	return manifest, true
}

func isStaleOrMissing(manifestPath string, maxAgeDays int) bool {
	manifest, ok := readManifest(manifestPath)
	if !ok {
		return true
	}

	stamp := manifest.UpdatedAt
	if stamp == "" {
		stamp = manifest.GeneratedAt
	}
	generatedAt, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return true
	}

	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour
	return time.Since(generatedAt) > maxAge
}

func getStoredGeneratorVersion(manifestPath string) string {
	manifest, _ := readManifest(manifestPath)
	return manifest.GeneratorVersion
}
