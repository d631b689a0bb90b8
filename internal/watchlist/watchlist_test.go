package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/repository"
)

var fixedNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func sampleMovieData(imdbID, title string) map[string]any {
	return map[string]any{
		"imdbID":     imdbID,
		"Title":      title,
		"Year":       "2010",
		"Genre":      "Action",
		"imdbRating": "8.8",
		"Plot":       "Test plot",
		"Poster":     "http://example.com/poster.jpg",
	}
}

func newTestRepo() (*Repository, *memStore) {
	store := newMemStore()
	return NewRepository(store, WithClock(func() time.Time { return fixedNow })), store
}

func addAll(t *testing.T, r *Repository, ids ...string) {
	t.Helper()
	for _, id := range ids {
		res, err := r.AddMovie(context.Background(), sampleMovieData(id, "Movie "+id))
		require.NoError(t, err)
		require.Equal(t, AddCreated, res.Status)
	}
}

func TestAddMovieCreated(t *testing.T) {
	r, store := newTestRepo()
	data := sampleMovieData("tt1375666", "Inception")

	res, err := r.AddMovie(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, AddCreated, res.Status)
	require.NotNil(t, res.Movie)
	assert.Equal(t, "Inception", res.Movie.Title)
	assert.Equal(t, "tt1375666", res.Movie.ExternalID)
	assert.NotZero(t, res.Movie.ID)
	assert.Equal(t, fixedNow, res.Movie.DateAdded)
	assert.False(t, res.Movie.Watched)
	assert.Equal(t, 1, store.inserts)
}

func TestAddMovieDuplicateReturnsExisting(t *testing.T) {
	r, store := newTestRepo()
	data := sampleMovieData("tt1375666", "Inception")

	first, err := r.AddMovie(context.Background(), data)
	require.NoError(t, err)

	second, err := r.AddMovie(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, AddAlreadyExists, second.Status)
	assert.Equal(t, first.Movie.ID, second.Movie.ID)
	assert.Equal(t, 1, store.inserts)

	all, err := r.GetAllMovies(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddMovieDuplicateSkipsValidation(t *testing.T) {
	r, _ := newTestRepo()
	addAll(t, r, "tt1")

	// Only the id is needed to detect an existing entry.
	res, err := r.AddMovie(context.Background(), map[string]any{"imdbID": "tt1"})
	require.NoError(t, err)
	assert.Equal(t, AddAlreadyExists, res.Status)
}

func TestAddMovieInsertRaceMapsToAlreadyExists(t *testing.T) {
	r, store := newTestRepo()
	store.insertErr = repository.ErrDuplicateExternalID
	store.racer = &model.Movie{ExternalID: "tt9", Title: "Winner", Year: "1999"}

	res, err := r.AddMovie(context.Background(), sampleMovieData("tt9", "Loser"))
	require.NoError(t, err)
	assert.Equal(t, AddAlreadyExists, res.Status)
	assert.Equal(t, "Winner", res.Movie.Title)

	all, _ := r.GetAllMovies(context.Background())
	assert.Len(t, all, 1)
}

func TestAddMovieMissingTitleStoresNothing(t *testing.T) {
	r, store := newTestRepo()
	data := sampleMovieData("tt1234567", "")
	delete(data, "Title")

	res, err := r.AddMovie(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMovie)
	assert.Nil(t, res.Movie)
	assert.Empty(t, store.rows)
}

func TestAddMovieRoundTrip(t *testing.T) {
	r, _ := newTestRepo()
	data := sampleMovieData("tt1375666", "Inception")
	data["imdbRating"] = "N/A"

	res, err := r.AddMovie(context.Background(), data)
	require.NoError(t, err)

	all, err := r.GetAllMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]

	assert.NotZero(t, got.ID)
	assert.False(t, got.DateAdded.IsZero())
	expected := *res.Movie
	assert.Equal(t, &expected, got)
	assert.Nil(t, got.Rating)
}

func TestAddMoviePropagatesStoreFailure(t *testing.T) {
	r, store := newTestRepo()
	boom := errors.New("db down")
	store.err = boom

	_, err := r.AddMovie(context.Background(), sampleMovieData("tt1", "x"))
	assert.ErrorIs(t, err, boom)
}

func TestWatchedPartition(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	addAll(t, r, "tt1", "tt2", "tt3", "tt4")

	for _, id := range []string{"tt1", "tt3"} {
		_, found, err := r.UpdateWatchedStatus(ctx, id, true)
		require.NoError(t, err)
		require.True(t, found)
	}

	unwatched, err := r.GetWatchlist(ctx)
	require.NoError(t, err)
	watched, err := r.GetByWatchedStatus(ctx, true)
	require.NoError(t, err)
	all, err := r.GetAllMovies(ctx)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, m := range unwatched {
		assert.False(t, m.Watched)
		seen[m.ExternalID] = true
	}
	for _, m := range watched {
		assert.True(t, m.Watched)
		assert.False(t, seen[m.ExternalID], "partition sides must be disjoint")
		seen[m.ExternalID] = true
	}
	assert.Len(t, seen, len(all))
	assert.ElementsMatch(t, []string{"tt2", "tt4"}, ids(unwatched))
	assert.ElementsMatch(t, []string{"tt1", "tt3"}, ids(watched))
}

func TestUpdateWatchedStatusToggles(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	addAll(t, r, "tt1")

	m, found, err := r.UpdateWatchedStatus(ctx, "tt1", true)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, m.Watched)

	m, found, err = r.UpdateWatchedStatus(ctx, "tt1", false)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, m.Watched)

	n, err := r.GetWatchedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNotFoundIsStable(t *testing.T) {
	r, store := newTestRepo()
	ctx := context.Background()
	addAll(t, r, "tt1", "tt2")
	before, _ := r.GetAllMovies(ctx)

	m, found, err := r.UpdateWatchedStatus(ctx, "tt0000000", true)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	m, found, err = r.DeleteMovie(ctx, "tt0000000")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, m)

	after, _ := r.GetAllMovies(ctx)
	assert.Equal(t, before, after)
	assert.Len(t, store.rows, 2)
}

func TestDeleteMovieReturnsPriorState(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	addAll(t, r, "tt1111111", "tt2222222", "tt3333333")
	_, _, err := r.UpdateWatchedStatus(ctx, "tt1111111", true)
	require.NoError(t, err)

	m, found, err := r.DeleteMovie(ctx, "tt1111111")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tt1111111", m.ExternalID)
	assert.True(t, m.Watched)

	all, err := r.GetAllMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	total, err := r.GetTotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestCounts(t *testing.T) {
	r, _ := newTestRepo()
	ctx := context.Background()
	addAll(t, r, "tt1", "tt2", "tt3")
	_, _, _ = r.UpdateWatchedStatus(ctx, "tt1", true)
	_, _, _ = r.UpdateWatchedStatus(ctx, "tt3", true)

	total, err := r.GetTotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	watched, err := r.GetWatchedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), watched)
}

func TestNewRepositoryPanicsOnNilStore(t *testing.T) {
	assert.Panics(t, func() { NewRepository(nil) })
}

func ids(movies []*model.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ExternalID)
	}
	return out
}
