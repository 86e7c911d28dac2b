// Package api exposes read-only archive access over a REST API secured
// with a static API key. Searches, metadata lookups and decoded payloads
// are served from lazily opened archive sessions.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skadidb/skadi/pkg/cache"
)

// NewRouter builds the chi router serving the given server.
func NewRouter(server *Server, config ServerConfig) chi.Router {
	metrics := server.metrics

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/archives", metrics.InstrumentHandler(
			"GET", "/api/v1/archives", server.handleListArchives))
		r.Get("/archives/{archive}/records", metrics.InstrumentHandler(
			"GET", "/api/v1/archives/{archive}/records", server.handleListRecords))
		r.Get("/archives/{archive}/records/{handle}", metrics.InstrumentHandler(
			"GET", "/api/v1/archives/{archive}/records/{handle}", server.handleDescribe))
		r.Get("/archives/{archive}/records/{handle}/data", metrics.InstrumentHandler(
			"GET", "/api/v1/archives/{archive}/records/{handle}/data", server.handleData))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It blocks
// until the listener fails.
func StartServer(config ServerConfig) error {
	metrics := NewMetrics()

	var fieldCache *cache.FieldCache
	if config.CacheEnabled && config.CacheDir != "" {
		c, err := cache.Open(config.CacheDir)
		if err != nil {
			return fmt.Errorf("failed to open field cache: %w", err)
		}
		fieldCache = c
	}

	server := NewServer(config, metrics, fieldCache)
	defer server.Close()

	r := NewRouter(server, config)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting SkadiDB REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, r)
}
