package watchlist

import (
	"context"

	"github.com/iliyamo/movie-watchlist/internal/model"
	"github.com/iliyamo/movie-watchlist/internal/repository"
)

// memStore is an in-memory Store used by the tests. Rows are kept in
// insertion order so FindAll matches MovieRepo's ORDER BY id.
type memStore struct {
	rows   []*model.Movie
	nextID uint64

	inserts int
	err     error // returned by every call when set

	// insertErr, when set, is returned by the next Insert after adding racer.
	insertErr error
	racer     *model.Movie
}

func newMemStore() *memStore { return &memStore{nextID: 1} }

func clone(m *model.Movie) *model.Movie {
	c := *m
	return &c
}

func (s *memStore) Insert(_ context.Context, m *model.Movie) error {
	if s.err != nil {
		return s.err
	}
	if s.insertErr != nil {
		if s.racer != nil {
			s.racer.ID = s.nextID
			s.nextID++
			s.rows = append(s.rows, clone(s.racer))
		}
		err := s.insertErr
		s.insertErr = nil
		return err
	}
	s.inserts++
	m.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, clone(m))
	return nil
}

func (s *memStore) FindByExternalID(_ context.Context, externalID string) (*model.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, m := range s.rows {
		if m.ExternalID == externalID {
			return clone(m), nil
		}
	}
	return nil, repository.ErrMovieNotFound
}

func (s *memStore) FindAll(_ context.Context) ([]*model.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*model.Movie{}
	for _, m := range s.rows {
		out = append(out, clone(m))
	}
	return out, nil
}

func (s *memStore) FindByWatched(_ context.Context, watched bool) ([]*model.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*model.Movie{}
	for _, m := range s.rows {
		if m.Watched == watched {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (s *memStore) SetWatched(_ context.Context, id uint64, watched bool) error {
	if s.err != nil {
		return s.err
	}
	for _, m := range s.rows {
		if m.ID == id {
			m.Watched = watched
			return nil
		}
	}
	return repository.ErrMovieNotFound
}

func (s *memStore) Delete(_ context.Context, target *model.Movie) error {
	if s.err != nil {
		return s.err
	}
	for i, m := range s.rows {
		if m.ID == target.ID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrMovieNotFound
}

func (s *memStore) Count(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.rows)), nil
}

func (s *memStore) CountByWatched(_ context.Context, watched bool) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for _, m := range s.rows {
		if m.Watched == watched {
			n++
		}
	}
	return n, nil
}
