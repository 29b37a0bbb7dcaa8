package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/handlers"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/config"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/session"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/stationindex"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/middleware"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

type routeDeps struct {
	index    *stationindex.Index
	lines    []models.LineGeometry
	style    config.MapStyle
	sessions *session.Store
	source   handlers.SourcePinger
	loadedAt time.Time
}

func newRouter(cfg *config.Config, deps routeDeps) http.Handler {
	stationHandler := handlers.NewStationHandler(deps.index, cfg.SearchCacheSize)
	lineHandler := handlers.NewLineHandler(deps.index, deps.lines)
	sessionHandler := handlers.NewSessionHandler(deps.sessions, deps.index)
	styleHandler := handlers.NewMapStyleHandler(deps.style)
	healthHandler := handlers.NewHealthHandler(deps.source, deps.index, deps.sessions, len(deps.lines), deps.loadedAt)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.GetHealth)
	r.Get("/healthz", healthHandler.GetLiveness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/map/style", styleHandler.GetMapStyle)

		r.Get("/lines", lineHandler.GetLines)
		r.Get("/lines/geometry", lineHandler.GetLineGeometry)
		r.Get("/lines/{line}/stations", lineHandler.GetLineStations)

		r.Get("/stations", stationHandler.GetStations)
		r.Get("/stations/search", stationHandler.SearchStations)
		r.Get("/stations/{id}", stationHandler.GetStation)
		r.Get("/stations/{id}/neighbors", stationHandler.GetNeighbors)

		r.Post("/sessions", sessionHandler.CreateSession)
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/select", sessionHandler.Select)
			r.Post("/next", sessionHandler.Next)
			r.Post("/previous", sessionHandler.Previous)
			r.Delete("/detail", sessionHandler.CloseDetail)
			r.Get("/commands", sessionHandler.GetCommands)
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
