package model

import "time"

// Movie represents a watchlist entry as stored in the `movies` table.
// Rows are created from OMDb lookup data and afterwards only the watched
// flag changes.
//
// Fields:
//
//	ID         – primary key identifier.
//	ExternalID – IMDb identifier (e.g. tt1375666); unique when present.
//	Title      – movie title.
//	Year       – release year as displayed by OMDb ("2010", "2010–2014").
//	Genre      – free-text genre list, nil when unknown.
//	Rating     – IMDb rating, nil when OMDb reports it as unavailable.
//	Plot       – plot summary, nil when unknown.
//	PosterURL  – poster image URL, nil when unknown.
//	Watched    – whether the movie has been watched; defaults to false.
//	DateAdded  – when the movie was added (UTC).
type Movie struct {
	ID         uint64    `json:"id"`         // movies.id
	ExternalID string    `json:"imdb_id"`    // movies.imdb_id
	Title      string    `json:"title"`      // movies.title
	Year       string    `json:"year"`       // movies.year
	Genre      *string   `json:"genre"`      // movies.genre
	Rating     *float64  `json:"rating"`     // movies.rating
	Plot       *string   `json:"plot"`       // movies.plot
	PosterURL  *string   `json:"poster_url"` // movies.poster_url
	Watched    bool      `json:"watched"`    // movies.watched
	DateAdded  time.Time `json:"date_added"` // movies.date_added
}
