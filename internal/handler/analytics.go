package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-watchlist/internal/analytics"
	"github.com/iliyamo/movie-watchlist/internal/model"
)

const topRatedLimit = 10

// AnalyticsHandler serves statistics over the whole watchlist.
type AnalyticsHandler struct {
	Engine StatsEngine
	Logger *logrus.Logger
}

// Stats handles GET /api/v1/analytics.
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	st, err := h.Engine.ComputeStats(c.Request().Context())
	if err != nil {
		h.Logger.WithError(err).Error("compute stats failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, st)
}

type genreReport struct {
	Genres   []analytics.GenreStat `json:"genres"`
	TopRated []*model.Movie        `json:"top_rated"`
}

// Genres handles GET /api/v1/analytics/genres.
func (h *AnalyticsHandler) Genres(c echo.Context) error {
	genres, top, err := h.Engine.Breakdown(c.Request().Context(), topRatedLimit)
	if err != nil {
		h.Logger.WithError(err).Error("genre breakdown failed")
		return errorJSON(c, http.StatusInternalServerError, "database error")
	}
	return c.JSON(http.StatusOK, genreReport{Genres: genres, TopRated: top})
}
