// Package repository defines error types that are reused across the
// data access layer. These sentinel values allow higher layers such as
// the watchlist repository and the HTTP handlers to distinguish between
// "no such row" and genuine storage failures.
package repository

import "errors"

// ErrMovieNotFound is returned when no movie row matches the lookup key
// or when a row disappeared before it could be updated or deleted.
var ErrMovieNotFound = errors.New("movie not found")

// ErrDuplicateExternalID is returned by Insert when the unique index on
// imdb_id rejects the row. It only surfaces when two inserts for the same
// external id race past the existence check.
var ErrDuplicateExternalID = errors.New("movie with this external id already exists")
