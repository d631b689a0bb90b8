// Package handler exposes the HTTP handlers of the watchlist API. Handlers
// depend on small interfaces so they can be exercised with fakes.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-watchlist/internal/analytics"
	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/omdb"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/watchlist"
)

// MovieLookup is the OMDb client as seen by the handlers.
type MovieLookup interface {
	Search(ctx context.Context, title string, page int) ([]omdb.SearchResult, error)
	FetchByID(ctx context.Context, imdbID string) (map[string]any, bool, error)
}

// Watchlist is the set of watchlist operations used over HTTP. It is
// satisfied by *watchlist.Repository.
type Watchlist interface {
	AddMovie(ctx context.Context, data map[string]any) (watchlist.AddResult, error)
	GetWatchlist(ctx context.Context) ([]*model.Movie, error)
	GetByWatchedStatus(ctx context.Context, watched bool) ([]*model.Movie, error)
	GetAllMovies(ctx context.Context) ([]*model.Movie, error)
	UpdateWatchedStatus(ctx context.Context, imdbID string, watched bool) (*model.Movie, bool, error)
	DeleteMovie(ctx context.Context, imdbID string) (*model.Movie, bool, error)
}

// StatsEngine is satisfied by *analytics.Engine.
type StatsEngine interface {
	ComputeStats(ctx context.Context) (analytics.Stats, error)
	Breakdown(ctx context.Context, n int) ([]analytics.GenreStat, []*model.Movie, error)
}

// EventPublisher is satisfied by *queue.Publisher and queue.NopPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.WatchlistEvent) error
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// upstreamError maps an OMDb failure to 502 and anything else to 500.
func upstreamError(c echo.Context, err error) error {
	var se *omdb.StatusError
	if errors.As(err, &se) || errors.Is(err, context.DeadlineExceeded) {
		return errorJSON(c, http.StatusBadGateway, "movie database unavailable")
	}
	return errorJSON(c, http.StatusInternalServerError, "internal error")
}
