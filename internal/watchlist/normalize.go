package watchlist

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// Keys of the OMDb detail payload consumed by AddMovie.
const (
	KeyExternalID = "imdbID"
	KeyTitle      = "Title"
	KeyYear       = "Year"
	KeyGenre      = "Genre"
	KeyRating     = "imdbRating"
	KeyPlot       = "Plot"
	KeyPoster     = "Poster"
)

// Unavailable is the marker OMDb uses for fields it has no value for.
const Unavailable = "N/A"

// ErrInvalidMovie is the category of every normalization failure.
var ErrInvalidMovie = errors.New("invalid movie data")

// ValidationError reports which source field could not be normalized.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrInvalidMovie, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidMovie }

// Normalize converts an OMDb detail payload into a Movie. imdbID, Title and
// Year are required; Genre, Plot and Poster are optional; imdbRating is
// parsed when present. The "N/A" marker and blank strings never reach the
// returned record. Watched and DateAdded are left for the caller to set.
func Normalize(data map[string]any) (*model.Movie, error) {
	externalID, err := requiredString(data, KeyExternalID)
	if err != nil {
		return nil, err
	}
	title, err := requiredString(data, KeyTitle)
	if err != nil {
		return nil, err
	}
	year, err := requiredString(data, KeyYear)
	if err != nil {
		return nil, err
	}
	genre, err := optionalString(data, KeyGenre)
	if err != nil {
		return nil, err
	}
	plot, err := optionalString(data, KeyPlot)
	if err != nil {
		return nil, err
	}
	poster, err := optionalString(data, KeyPoster)
	if err != nil {
		return nil, err
	}
	rating, err := parseRating(data[KeyRating])
	if err != nil {
		return nil, err
	}
	return &model.Movie{
		ExternalID: externalID,
		Title:      title,
		Year:       year,
		Genre:      genre,
		Rating:     rating,
		Plot:       plot,
		PosterURL:  poster,
	}, nil
}

// ExternalID extracts only the business key from the payload.
func ExternalID(data map[string]any) (string, error) {
	return requiredString(data, KeyExternalID)
}

func requiredString(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", &ValidationError{Field: key, Reason: "is required"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: key, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: key, Reason: "is required"}
	}
	return s, nil
}

func optionalString(data map[string]any, key string) (*string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, &ValidationError{Field: key, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	s = strings.TrimSpace(s)
	if s == "" || s == Unavailable {
		return nil, nil
	}
	return &s, nil
}

func parseRating(raw any) (*float64, error) {
	var v float64
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		v = t
	case int:
		v = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == Unavailable {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ValidationError{Field: KeyRating, Reason: fmt.Sprintf("is not a number: %q", t)}
		}
		v = f
	default:
		return nil, &ValidationError{Field: KeyRating, Reason: fmt.Sprintf("has unsupported type %T", raw)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Field: KeyRating, Reason: "is not a finite number"}
	}
	return &v, nil
}
