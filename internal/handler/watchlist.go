package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/metrics"
	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/watchlist"
)

// WatchlistHandler serves the stored watchlist. Mutations publish a
// WatchlistEvent; a failed publish is logged and does not fail the request.
type WatchlistHandler struct {
	Watchlist Watchlist
	OMDb      MovieLookup
	Events    EventPublisher
	Logger    *logrus.Logger
}

type addMovieRequest struct {
	ImdbID string `json:"imdb_id"`
}

// List handles GET /api/v1/movies. ?watched=true|false filters by status,
// ?watched=all returns everything; without it the unwatched watchlist is
// returned.
func (h *WatchlistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		movies []*model.Movie
		err    error
	)
	switch q := strings.ToLower(c.QueryParam("watched")); q {
	case "":
		movies, err = h.Watchlist.GetWatchlist(ctx)
	case "all":
		movies, err = h.Watchlist.GetAllMovies(ctx)
	default:
		watched, perr := strconv.ParseBool(q)
		if perr != nil {
			return errorJSON(c, http.StatusBadRequest, "watched must be true, false or all")
		}
		movies, err = h.Watchlist.GetByWatchedStatus(ctx, watched)
	}
	if err != nil {
		h.Logger.WithError(err).Error("list movies failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	if movies == nil {
		movies = []*model.Movie{}
	}
	return c.JSON(http.StatusOK, movies)
}

// Add handles POST /api/v1/movies with body {"imdb_id": "..."}. The movie
// is fetched from OMDb and stored unless it is already on the list.
func (h *WatchlistHandler) Add(c echo.Context) error {
	var req addMovieRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON body")
	}
	id := strings.TrimSpace(req.ImdbID)
	if id == "" {
		return errorJSON(c, http.StatusBadRequest, "imdb_id is required")
	}
	ctx := c.Request().Context()
	log := h.Logger.WithField("imdb_id", id)

	data, found, err := h.OMDb.FetchByID(ctx, id)
	if err != nil {
		metrics.OMDbRequests.WithLabelValues("fetch", "error").Inc()
		log.WithError(err).Error("omdb fetch failed")
		return upstreamError(c, err)
	}
	if !found {
		metrics.OMDbRequests.WithLabelValues("fetch", "not_found").Inc()
		return errorJSON(c, http.StatusNotFound, "movie not found in OMDb")
	}
	metrics.OMDbRequests.WithLabelValues("fetch", "ok").Inc()

	res, err := h.Watchlist.AddMovie(ctx, data)
	if err != nil {
		if errors.Is(err, watchlist.ErrInvalidMovie) {
			metrics.WatchlistOps.WithLabelValues("add", "invalid").Inc()
			log.WithError(err).Warn("rejected incomplete movie data")
			return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
		}
		metrics.WatchlistOps.WithLabelValues("add", "error").Inc()
		log.WithError(err).Error("add movie failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	metrics.WatchlistOps.WithLabelValues("add", string(res.Status)).Inc()
	if res.Status == watchlist.AddAlreadyExists {
		return errorJSON(c, http.StatusBadRequest, "movie already exists in watchlist")
	}

	h.publish(c, queue.NewEvent(queue.EventMovieAdded, res.Movie))
	log.WithField("title", res.Movie.Title).Info("movie added")
	return c.JSON(http.StatusOK, res.Movie)
}

// UpdateWatched handles PATCH /api/v1/movies/:imdb_id/watched?watched=bool.
func (h *WatchlistHandler) UpdateWatched(c echo.Context) error {
	id := c.Param("imdb_id")
	watched, err := strconv.ParseBool(c.QueryParam("watched"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "watched must be true or false")
	}

	m, found, err := h.Watchlist.UpdateWatchedStatus(c.Request().Context(), id, watched)
	if err != nil {
		metrics.WatchlistOps.WithLabelValues("update", "error").Inc()
		h.Logger.WithError(err).WithField("imdb_id", id).Error("update watched failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	if !found {
		metrics.WatchlistOps.WithLabelValues("update", "not_found").Inc()
		return errorJSON(c, http.StatusNotFound, "movie not found in watchlist")
	}
	metrics.WatchlistOps.WithLabelValues("update", "updated").Inc()
	h.publish(c, queue.WatchedEvent(m))
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/v1/movies/:imdb_id and returns the removed
// movie.
func (h *WatchlistHandler) Delete(c echo.Context) error {
	id := c.Param("imdb_id")
	m, found, err := h.Watchlist.DeleteMovie(c.Request().Context(), id)
	if err != nil {
		metrics.WatchlistOps.WithLabelValues("delete", "error").Inc()
		h.Logger.WithError(err).WithField("imdb_id", id).Error("delete movie failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	if !found {
		metrics.WatchlistOps.WithLabelValues("delete", "not_found").Inc()
		return errorJSON(c, http.StatusNotFound, "movie not found in watchlist")
	}
	metrics.WatchlistOps.WithLabelValues("delete", "deleted").Inc()
	h.publish(c, queue.NewEvent(queue.EventMovieDeleted, m))
	return c.JSON(http.StatusOK, m)
}

func (h *WatchlistHandler) publish(c echo.Context, ev queue.WatchlistEvent) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		h.Logger.WithError(err).WithField("event_id", ev.EventID).Warn("event not published")
	}
}
