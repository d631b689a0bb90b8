package analytics

import (
	"sort"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// Report is the catalogue summary printed by cmd/analyze.
type Report struct {
	Stats
	Threshold      float64        `json:"threshold"`
	AboveThreshold int            `json:"above_threshold"`
	TopRated       []*model.Movie `json:"top_rated"`
	TopGenres      []GenreStat    `json:"top_genres"`
	GenreAverages  []GenreStat    `json:"genre_averages"`
}

// BuildReport summarizes a catalogue. Genre counts and averages use one
// entry per title, the first one seen.
func BuildReport(movies []*model.Movie, threshold float64, topN, topGenres int) Report {
	unique := UniqueTitles(movies)
	genres := GenreBreakdown(unique)

	top := genres
	if len(top) > topGenres {
		top = top[:topGenres]
	}

	byAvg := make([]GenreStat, 0, len(genres))
	for _, g := range genres {
		if g.AverageRating != nil {
			byAvg = append(byAvg, g)
		}
	}
	sort.SliceStable(byAvg, func(i, j int) bool {
		return *byAvg[i].AverageRating > *byAvg[j].AverageRating
	})

	return Report{
		Stats:          Summarize(movies),
		Threshold:      threshold,
		AboveThreshold: CountAbove(movies, threshold),
		TopRated:       TopRated(movies, topN),
		TopGenres:      top,
		GenreAverages:  byAvg,
	}
}

// UniqueTitles keeps the first movie of every title, in input order.
func UniqueTitles(movies []*model.Movie) []*model.Movie {
	seen := make(map[string]bool, len(movies))
	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if seen[m.Title] {
			continue
		}
		seen[m.Title] = true
		out = append(out, m)
	}
	return out
}
