package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-watchlist/internal/analytics"
	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/omdb"
	"github.com/iliyamo/movie-watchlist/internal/queue"
	"github.com/iliyamo/movie-watchlist/internal/watchlist"
)

type fakeLookup struct {
	movies  map[string]map[string]any
	results []omdb.SearchResult
	err     error
}

func (f *fakeLookup) Search(_ context.Context, _ string, _ int) ([]omdb.SearchResult, error) {
	return f.results, f.err
}

func (f *fakeLookup) FetchByID(_ context.Context, id string) (map[string]any, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	data, ok := f.movies[id]
	return data, ok, nil
}

// memWatchlist is a minimal Watchlist keyed by imdb id.
type memWatchlist struct {
	movies []*model.Movie
	err    error
}

func (w *memWatchlist) AddMovie(_ context.Context, data map[string]any) (watchlist.AddResult, error) {
	if w.err != nil {
		return watchlist.AddResult{}, w.err
	}
	id, _ := data["imdbID"].(string)
	for _, m := range w.movies {
		if m.ExternalID == id {
			return watchlist.AddResult{Status: watchlist.AddAlreadyExists, Movie: m}, nil
		}
	}
	m, err := watchlist.Normalize(data)
	if err != nil {
		return watchlist.AddResult{}, err
	}
	m.ID = uint64(len(w.movies) + 1)
	m.DateAdded = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w.movies = append(w.movies, m)
	return watchlist.AddResult{Status: watchlist.AddCreated, Movie: m}, nil
}

func (w *memWatchlist) GetWatchlist(ctx context.Context) ([]*model.Movie, error) {
	return w.GetByWatchedStatus(ctx, false)
}

func (w *memWatchlist) GetByWatchedStatus(_ context.Context, watched bool) ([]*model.Movie, error) {
	var out []*model.Movie
	for _, m := range w.movies {
		if m.Watched == watched {
			out = append(out, m)
		}
	}
	return out, w.err
}

func (w *memWatchlist) GetAllMovies(context.Context) ([]*model.Movie, error) {
	return w.movies, w.err
}

func (w *memWatchlist) UpdateWatchedStatus(_ context.Context, id string, watched bool) (*model.Movie, bool, error) {
	if w.err != nil {
		return nil, false, w.err
	}
	for _, m := range w.movies {
		if m.ExternalID == id {
			m.Watched = watched
			return m, true, nil
		}
	}
	return nil, false, nil
}

func (w *memWatchlist) DeleteMovie(_ context.Context, id string) (*model.Movie, bool, error) {
	if w.err != nil {
		return nil, false, w.err
	}
	for i, m := range w.movies {
		if m.ExternalID == id {
			w.movies = append(w.movies[:i], w.movies[i+1:]...)
			return m, true, nil
		}
	}
	return nil, false, nil
}

type recordingPublisher struct {
	events []queue.WatchlistEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.WatchlistEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	e      *echo.Echo
	list   *memWatchlist
	lookup *fakeLookup
	events *recordingPublisher
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		e:    echo.New(),
		list: &memWatchlist{},
		lookup: &fakeLookup{movies: map[string]map[string]any{
			"tt1375666": {"imdbID": "tt1375666", "Title": "Inception", "Year": "2010", "Genre": "Action", "imdbRating": "8.8"},
			"tt0000001": {"imdbID": "tt0000001", "Year": "1999"},
		}},
		events: &recordingPublisher{},
	}
	wh := &WatchlistHandler{Watchlist: f.list, OMDb: f.lookup, Events: f.events, Logger: logger}
	sh := &SearchHandler{OMDb: f.lookup, Logger: logger}
	ah := &AnalyticsHandler{Engine: analytics.NewEngine(f.list), Logger: logger}

	f.e.GET("/healthz", Health)
	f.e.GET("/api/v1/search/:title", sh.Search)
	f.e.GET("/api/v1/movies/:imdb_id", sh.Lookup)
	f.e.GET("/api/v1/movies", wh.List)
	f.e.POST("/api/v1/movies", wh.Add)
	f.e.PATCH("/api/v1/movies/:imdb_id/watched", wh.UpdateWatched)
	f.e.DELETE("/api/v1/movies/:imdb_id", wh.Delete)
	f.e.GET("/api/v1/analytics", ah.Stats)
	f.e.GET("/api/v1/analytics/genres", ah.Genres)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAddMovie(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/movies", `{"imdb_id":"tt1375666"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[model.Movie](t, rec)
	assert.Equal(t, "Inception", m.Title)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.EventMovieAdded, f.events.events[0].Type)

	rec = f.do(http.MethodPost, "/api/v1/movies", `{"imdb_id":"tt1375666"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
	assert.Len(t, f.list.movies, 1)
	assert.Len(t, f.events.events, 1)
}

func TestAddMovieErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing id", `{}`, http.StatusBadRequest},
		{"bad json", `{"imdb_id":`, http.StatusBadRequest},
		{"unknown to omdb", `{"imdb_id":"tt9999999"}`, http.StatusNotFound},
		{"incomplete omdb data", `{"imdb_id":"tt0000001"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rec := f.do(http.MethodPost, "/api/v1/movies", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Empty(t, f.list.movies)
			assert.Empty(t, f.events.events)
		})
	}
}

func TestAddMovieUpstreamFailure(t *testing.T) {
	f := newFixture()
	f.lookup.err = &omdb.StatusError{StatusCode: http.StatusServiceUnavailable}
	rec := f.do(http.MethodPost, "/api/v1/movies", `{"imdb_id":"tt1375666"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAddMovieSurvivesPublishFailure(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("broker down")
	rec := f.do(http.MethodPost, "/api/v1/movies", `{"imdb_id":"tt1375666"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListFilters(t *testing.T) {
	f := newFixture()
	f.list.movies = []*model.Movie{
		{ID: 1, ExternalID: "tt1", Title: "A", Watched: true},
		{ID: 2, ExternalID: "tt2", Title: "B"},
	}

	rec := f.do(http.MethodGet, "/api/v1/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Movie](t, rec), 1)

	rec = f.do(http.MethodGet, "/api/v1/movies?watched=true", "")
	got := decode[[]model.Movie](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "tt1", got[0].ExternalID)

	rec = f.do(http.MethodGet, "/api/v1/movies?watched=all", "")
	assert.Len(t, decode[[]model.Movie](t, rec), 2)

	rec = f.do(http.MethodGet, "/api/v1/movies?watched=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmptyIsArray(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/api/v1/movies", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateWatched(t *testing.T) {
	f := newFixture()
	f.list.movies = []*model.Movie{{ID: 1, ExternalID: "tt1", Title: "A"}}

	rec := f.do(http.MethodPatch, "/api/v1/movies/tt1/watched?watched=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.Movie](t, rec).Watched)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, queue.EventMovieWatched, f.events.events[0].Type)

	rec = f.do(http.MethodPatch, "/api/v1/movies/tt0000000/watched?watched=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/movies/tt1/watched", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMovie(t *testing.T) {
	f := newFixture()
	f.list.movies = []*model.Movie{{ID: 1, ExternalID: "tt1", Title: "A", Watched: true}}

	rec := f.do(http.MethodDelete, "/api/v1/movies/tt1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Movie](t, rec)
	assert.Equal(t, "tt1", got.ExternalID)
	assert.True(t, got.Watched)
	assert.Empty(t, f.list.movies)

	rec = f.do(http.MethodDelete, "/api/v1/movies/tt1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.events.events, 1)
}

func TestStoreFailureIs500(t *testing.T) {
	f := newFixture()
	f.list.err = errors.New("db down")

	for _, rec := range []*httptest.ResponseRecorder{
		f.do(http.MethodGet, "/api/v1/movies", ""),
		f.do(http.MethodDelete, "/api/v1/movies/tt1", ""),
		f.do(http.MethodPatch, "/api/v1/movies/tt1/watched?watched=false", ""),
		f.do(http.MethodGet, "/api/v1/analytics", ""),
	} {
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestSearchAndLookup(t *testing.T) {
	f := newFixture()
	f.lookup.results = []omdb.SearchResult{{Title: "Inception", ImdbID: "tt1375666"}}

	rec := f.do(http.MethodGet, "/api/v1/search/Inception", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]omdb.SearchResult](t, rec), 1)

	rec = f.do(http.MethodGet, "/api/v1/search/Inception?page=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/movies/tt1375666", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inception", decode[map[string]any](t, rec)["Title"])

	rec = f.do(http.MethodGet, "/api/v1/movies/tt9999999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics(t *testing.T) {
	f := newFixture()
	r1, r2 := 8.0, 7.0
	g := "Drama"
	f.list.movies = []*model.Movie{
		{ExternalID: "tt1", Title: "A", Genre: &g, Rating: &r1, Watched: true},
		{ExternalID: "tt2", Title: "B", Genre: &g, Rating: &r2},
	}

	rec := f.do(http.MethodGet, "/api/v1/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"average_rating":7.5,"most_frequent_genre":"Drama","number_watched":1,"total_movies":2}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/analytics/genres", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[genreReport](t, rec)
	require.Len(t, report.Genres, 1)
	assert.Equal(t, 2, report.Genres[0].Count)
	assert.Len(t, report.TopRated, 2)
}

func TestAnalyticsEmpty(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/api/v1/analytics", "")
	assert.JSONEq(t, `{"average_rating":null,"most_frequent_genre":null,"number_watched":0,"total_movies":0}`, rec.Body.String())
}
