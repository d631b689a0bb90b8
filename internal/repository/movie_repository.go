// Package repository contains data access logic separated from HTTP handlers.
// This file defines the MovieRepo which owns the persisted watchlist rows.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const movieColumns = "id, imdb_id, title, year, genre, rating, plot, poster_url, watched, date_added"

// MovieRepo encapsulates all database queries related to watchlist movies.
// It depends on a sql.DB connection which should be configured elsewhere.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Insert persists a normalized movie and populates its ID. The caller is
// responsible for setting DateAdded and for checking that the external id
// is not already stored; the unique index only acts as a backstop and is
// reported as ErrDuplicateExternalID.
func (r *MovieRepo) Insert(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (imdb_id, title, year, genre, rating, plot, poster_url, watched, date_added)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		nullIfEmpty(m.ExternalID),
		nullIfEmpty(m.Title),
		nullIfEmpty(m.Year),
		m.Genre,
		m.Rating,
		m.Plot,
		m.PosterURL,
		m.Watched,
		m.DateAdded,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrDuplicateExternalID
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// FindByExternalID fetches a movie by its IMDb id. It returns
// ErrMovieNotFound if no row is found.
func (r *MovieRepo) FindByExternalID(ctx context.Context, externalID string) (*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE imdb_id = ? LIMIT 1"
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// FindAll returns every movie ordered by id, which is insertion order.
func (r *MovieRepo) FindAll(ctx context.Context) ([]*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies ORDER BY id"
	return r.list(ctx, q)
}

// FindByWatched returns the movies whose watched flag equals the argument.
func (r *MovieRepo) FindByWatched(ctx context.Context, watched bool) ([]*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE watched = ? ORDER BY id"
	return r.list(ctx, q, watched)
}

// SetWatched updates the watched flag of the movie with the given id.
// It returns ErrMovieNotFound when the row no longer exists. The DSN opened
// by database.Open sets clientFoundRows, so an unchanged value still counts
// as an affected row.
func (r *MovieRepo) SetWatched(ctx context.Context, id uint64, watched bool) error {
	const q = "UPDATE movies SET watched = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, watched, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a previously fetched movie. ErrMovieNotFound is returned
// when the row has already been removed.
func (r *MovieRepo) Delete(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Count returns the total number of stored movies.
func (r *MovieRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n)
	return n, err
}

// CountByWatched returns the number of movies with the given watched flag.
func (r *MovieRepo) CountByWatched(ctx context.Context, watched bool) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies WHERE watched = ?", watched).Scan(&n)
	return n, err
}

func (r *MovieRepo) list(ctx context.Context, q string, args ...any) ([]*model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m                       model.Movie
		externalID, title, year sql.NullString
		genre, plot, poster     sql.NullString
		rating                  sql.NullFloat64
	)
	if err := s.Scan(&m.ID, &externalID, &title, &year, &genre, &rating, &plot, &poster, &m.Watched, &m.DateAdded); err != nil {
		return nil, err
	}
	m.ExternalID = externalID.String
	m.Title = title.String
	m.Year = year.String
	m.Genre = stringPtr(genre)
	m.Plot = stringPtr(plot)
	m.PosterURL = stringPtr(poster)
	if rating.Valid {
		v := rating.Float64
		m.Rating = &v
	}
	return &m, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
