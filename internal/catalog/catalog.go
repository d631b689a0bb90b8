// Package catalog reads offline movie catalogues (IMDb CSV exports) into
// model.Movie values so they can be fed to the analytics functions.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("catalog: missing column")

var required = []string{"title", "genre", "rating"}

// LoadCSV parses a CSV catalogue with a header row. Columns are matched by
// name, case-insensitively; title, genre and rating are required, year is
// optional. Genres are trimmed, and a blank genre or rating is left absent.
func LoadCSV(r io.Reader) ([]*model.Movie, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}
	yearCol, hasYear := cols["year"]

	field := func(rec []string, i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	movies := []*model.Movie{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: line %d: %w", line, err)
		}

		m := &model.Movie{Title: field(rec, cols["title"])}
		if hasYear {
			m.Year = field(rec, yearCol)
		}
		if g := field(rec, cols["genre"]); g != "" {
			m.Genre = &g
		}
		if s := field(rec, cols["rating"]); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("catalog: line %d: bad rating %q", line, s)
			}
			m.Rating = &v
		}
		movies = append(movies, m)
	}
	return movies, nil
}
