// Package watchlist implements the business operations on the movie
// watchlist on top of a record store: adding movies from OMDb data without
// duplicates, watched-status queries and mutation, and deletion.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/repository"
)

// Store is the record store the repository operates on. It is satisfied by
// *repository.MovieRepo. Lookups report missing rows with
// repository.ErrMovieNotFound.
type Store interface {
	Insert(ctx context.Context, m *model.Movie) error
	FindByExternalID(ctx context.Context, externalID string) (*model.Movie, error)
	FindAll(ctx context.Context) ([]*model.Movie, error)
	FindByWatched(ctx context.Context, watched bool) ([]*model.Movie, error)
	SetWatched(ctx context.Context, id uint64, watched bool) error
	Delete(ctx context.Context, m *model.Movie) error
	Count(ctx context.Context) (int64, error)
	CountByWatched(ctx context.Context, watched bool) (int64, error)
}

// AddStatus tells whether AddMovie stored a new record.
type AddStatus string

const (
	AddCreated       AddStatus = "created"
	AddAlreadyExists AddStatus = "already_exists"
)

// AddResult is the outcome of AddMovie. Movie is the new record for
// AddCreated and the pre-existing one for AddAlreadyExists.
type AddResult struct {
	Status AddStatus
	Movie  *model.Movie
}

// Repository exposes the watchlist operations used by the HTTP layer and
// the analytics engine.
type Repository struct {
	store Store
	now   func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock overrides the clock used to stamp DateAdded.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository builds a Repository over the given store.
func NewRepository(store Store, opts ...Option) *Repository {
	if store == nil {
		panic("nil store passed to watchlist.NewRepository")
	}
	r := &Repository{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddMovie stores a movie described by an OMDb detail payload unless a
// movie with the same imdbID is already on the list. A *ValidationError is
// returned when required fields are missing; nothing is written then.
func (r *Repository) AddMovie(ctx context.Context, data map[string]any) (AddResult, error) {
	externalID, err := ExternalID(data)
	if err != nil {
		return AddResult{}, err
	}
	existing, err := r.find(ctx, externalID)
	if err != nil {
		return AddResult{}, err
	}
	if existing != nil {
		return AddResult{Status: AddAlreadyExists, Movie: existing}, nil
	}

	m, err := Normalize(data)
	if err != nil {
		return AddResult{}, err
	}
	m.Watched = false
	m.DateAdded = r.now().UTC().Truncate(time.Microsecond)

	if err := r.store.Insert(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicateExternalID) {
			// Lost an insert race; report the row that won.
			winner, ferr := r.find(ctx, externalID)
			if ferr != nil {
				return AddResult{}, ferr
			}
			if winner != nil {
				return AddResult{Status: AddAlreadyExists, Movie: winner}, nil
			}
		}
		return AddResult{}, fmt.Errorf("insert movie %s: %w", externalID, err)
	}
	return AddResult{Status: AddCreated, Movie: m}, nil
}

// GetWatchlist returns the movies not watched yet.
func (r *Repository) GetWatchlist(ctx context.Context) ([]*model.Movie, error) {
	return r.GetByWatchedStatus(ctx, false)
}

// GetByWatchedStatus returns the movies whose watched flag equals watched.
func (r *Repository) GetByWatchedStatus(ctx context.Context, watched bool) ([]*model.Movie, error) {
	movies, err := r.store.FindByWatched(ctx, watched)
	if err != nil {
		return nil, fmt.Errorf("list movies by watched=%t: %w", watched, err)
	}
	return movies, nil
}

// GetAllMovies returns every stored movie.
func (r *Repository) GetAllMovies(ctx context.Context) ([]*model.Movie, error) {
	movies, err := r.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// UpdateWatchedStatus sets the watched flag of the movie with the given
// imdbID. found is false, with a nil error, when no such movie exists.
func (r *Repository) UpdateWatchedStatus(ctx context.Context, externalID string, watched bool) (movie *model.Movie, found bool, err error) {
	m, err := r.find(ctx, externalID)
	if err != nil || m == nil {
		return nil, false, err
	}
	if err := r.store.SetWatched(ctx, m.ID, watched); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update watched for %s: %w", externalID, err)
	}
	m.Watched = watched
	return m, true, nil
}

// DeleteMovie removes the movie with the given imdbID and returns it as it
// was just before deletion. found is false when no such movie exists.
func (r *Repository) DeleteMovie(ctx context.Context, externalID string) (movie *model.Movie, found bool, err error) {
	m, err := r.find(ctx, externalID)
	if err != nil || m == nil {
		return nil, false, err
	}
	if err := r.store.Delete(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("delete movie %s: %w", externalID, err)
	}
	return m, true, nil
}

// GetTotalCount returns the number of stored movies.
func (r *Repository) GetTotalCount(ctx context.Context) (int64, error) {
	return r.store.Count(ctx)
}

// GetWatchedCount returns the number of watched movies.
func (r *Repository) GetWatchedCount(ctx context.Context) (int64, error) {
	return r.store.CountByWatched(ctx, true)
}

// find returns nil without error when the movie does not exist.
func (r *Repository) find(ctx context.Context, externalID string) (*model.Movie, error) {
	m, err := r.store.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find movie %s: %w", externalID, err)
	}
	return m, nil
}
