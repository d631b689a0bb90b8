package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/metrics"
)

// SearchHandler proxies title search and detail lookups to OMDb.
type SearchHandler struct {
	OMDb   MovieLookup
	Logger *logrus.Logger
}

// Search handles GET /api/v1/search/:title. An optional ?page= selects the
// OMDb result page. No match yields an empty array.
func (h *SearchHandler) Search(c echo.Context) error {
	title := strings.TrimSpace(c.Param("title"))
	if title == "" {
		return errorJSON(c, http.StatusBadRequest, "title is required")
	}
	page := 1
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return errorJSON(c, http.StatusBadRequest, "page must be a positive integer")
		}
		page = n
	}

	results, err := h.OMDb.Search(c.Request().Context(), title, page)
	if err != nil {
		metrics.OMDbRequests.WithLabelValues("search", "error").Inc()
		h.Logger.WithError(err).WithField("title", title).Error("search failed")
		return upstreamError(c, err)
	}
	metrics.OMDbRequests.WithLabelValues("search", "ok").Inc()
	return c.JSON(http.StatusOK, results)
}

// Lookup handles GET /api/v1/movies/:imdb_id and returns the raw OMDb
// detail payload.
func (h *SearchHandler) Lookup(c echo.Context) error {
	id := strings.TrimSpace(c.Param("imdb_id"))
	data, found, err := h.OMDb.FetchByID(c.Request().Context(), id)
	if err != nil {
		metrics.OMDbRequests.WithLabelValues("fetch", "error").Inc()
		h.Logger.WithError(err).WithField("imdb_id", id).Error("lookup failed")
		return upstreamError(c, err)
	}
	if !found {
		metrics.OMDbRequests.WithLabelValues("fetch", "not_found").Inc()
		return errorJSON(c, http.StatusNotFound, "movie not found")
	}
	metrics.OMDbRequests.WithLabelValues("fetch", "ok").Inc()
	return c.JSON(http.StatusOK, data)
}
