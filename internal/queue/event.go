// Package queue defines the watchlist events exchanged over RabbitMQ, the
// publisher used by the HTTP layer and the activity-log consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// EventType names a watchlist change.
type EventType string

const (
	EventMovieAdded     EventType = "movie.added"
	EventMovieWatched   EventType = "movie.watched"
	EventMovieUnwatched EventType = "movie.unwatched"
	EventMovieDeleted   EventType = "movie.deleted"
)

// WatchlistQueue is the durable queue carrying WatchlistEvent messages.
const WatchlistQueue = "watchlist.events"

// WatchlistEvent is published after every successful watchlist mutation.
// It carries enough of the movie for consumers to log it without querying
// the database.
type WatchlistEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	ImdbID     string    `json:"imdb_id"`
	Title      string    `json:"title"`
	Watched    bool      `json:"watched"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds an event of type t for m stamped with the current time.
func NewEvent(t EventType, m *model.Movie) WatchlistEvent {
	return WatchlistEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		ImdbID:     m.ExternalID,
		Title:      m.Title,
		Watched:    m.Watched,
		OccurredAt: time.Now().UTC(),
	}
}

// WatchedEvent picks movie.watched or movie.unwatched for a status change.
func WatchedEvent(m *model.Movie) WatchlistEvent {
	if m.Watched {
		return NewEvent(EventMovieWatched, m)
	}
	return NewEvent(EventMovieUnwatched, m)
}
