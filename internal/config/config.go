package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the subte map services
type Config struct {
	// HTTP
	Port           string
	StaticDir      string
	AllowedOrigins []string

	// Station sources (first match wins: Postgres, SQLite, GeoJSON files, embedded)
	DatabaseURL     string
	SQLitePath      string
	StationsGeoJSON string
	LinesGeoJSON    string

	// Selection sessions and search
	SessionTTL      time.Duration
	SearchCacheSize int

	// Map style
	MapStyleFile string

	// Logging
	LogLevel string
	LogFile  string

	// Static data refresh (GTFS -> GeoJSON)
	WebPublicDir      string
	CacheDir          string
	StaticRefreshDays int
	GTFSURL           string
}

// LoadDotEnv loads .env then lets .env.local override it for local development.
// Missing files are ignored.
func LoadDotEnv(dir string) {
	_ = godotenv.Load(dir + "/.env")
	_ = godotenv.Overload(dir + "/.env.local")
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// HTTP
		Port:           getEnv("PORT", "8081"),
		StaticDir:      getEnv("STATIC_DIR", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		// Station sources
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_DATABASE", "data/subte.db"),
		StationsGeoJSON: getEnv("STATIONS_GEOJSON", ""),
		LinesGeoJSON:    getEnv("LINES_GEOJSON", ""),

		// Selection sessions and search
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SearchCacheSize: getEnvInt("SEARCH_CACHE_SIZE", 256),

		// Map style
		MapStyleFile: getEnv("MAP_STYLE_FILE", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Static data refresh
		WebPublicDir:      getEnv("WEB_PUBLIC_DIR", "web_public"),
		CacheDir:          getEnv("CACHE_DIR", "data/cache"),
		StaticRefreshDays: getEnvInt("STATIC_REFRESH_DAYS", 7),
		GTFSURL:           getEnv("GTFS_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
