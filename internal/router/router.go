// Package router wires the HTTP handlers onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/movie-watchlist/internal/handler"
)

// Handlers bundles everything RegisterRoutes mounts. OMDbMiddleware (cache
// and rate limit) applies only to the routes that call OMDb directly.
type Handlers struct {
	Search         *handler.SearchHandler
	Watchlist      *handler.WatchlistHandler
	Analytics      *handler.AnalyticsHandler
	OMDbMiddleware []echo.MiddlewareFunc
}

// RegisterRoutes mounts the health probe, the Prometheus endpoint and the
// /api/v1 routes.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	// OMDb passthrough
	api.GET("/search/:title", h.Search.Search, h.OMDbMiddleware...)
	api.GET("/movies/:imdb_id", h.Search.Lookup, h.OMDbMiddleware...)

	// Watchlist
	api.GET("/movies", h.Watchlist.List)
	api.POST("/movies", h.Watchlist.Add)
	api.PATCH("/movies/:imdb_id/watched", h.Watchlist.UpdateWatched)
	api.DELETE("/movies/:imdb_id", h.Watchlist.Delete)

	api.GET("/analytics", h.Analytics.Stats)
	api.GET("/analytics/genres", h.Analytics.Genres)
}
