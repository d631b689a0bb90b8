// Package analytics computes summary statistics over the stored watchlist.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/iliyamo/movie-watchlist/internal/model"
)

// Stats is the payload served by GET /api/v1/analytics.
type Stats struct {
	AverageRating     *float64 `json:"average_rating"`
	MostFrequentGenre *string  `json:"most_frequent_genre"`
	NumberWatched     int      `json:"number_watched"`
	TotalMovies       int      `json:"total_movies"`
}

// Source yields the full record set. *watchlist.Repository satisfies it.
type Source interface {
	GetAllMovies(ctx context.Context) ([]*model.Movie, error)
}

// Engine computes Stats from a Source.
type Engine struct {
	src Source
}

// NewEngine returns an Engine reading from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// ComputeStats reads every stored movie and summarizes them.
func (e *Engine) ComputeStats(ctx context.Context) (Stats, error) {
	movies, err := e.src.GetAllMovies(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("compute stats: %w", err)
	}
	return Summarize(movies), nil
}

// Breakdown reads every stored movie and returns the per-genre breakdown
// together with the n best rated titles.
func (e *Engine) Breakdown(ctx context.Context, n int) ([]GenreStat, []*model.Movie, error) {
	movies, err := e.src.GetAllMovies(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("genre breakdown: %w", err)
	}
	return GenreBreakdown(movies), TopRated(movies, n), nil
}

// Summarize reduces movies to Stats. Movies without a rating or genre are
// left out of the average and the mode; when no movie has one the field is
// nil. Ties for the most frequent genre go to the genre seen first.
func Summarize(movies []*model.Movie) Stats {
	if len(movies) == 0 {
		return Stats{}
	}

	var (
		sum     float64
		rated   int
		watched int
		counts  = map[string]int{}
		order   []string
	)
	for _, m := range movies {
		if m.Rating != nil {
			sum += *m.Rating
			rated++
		}
		if m.Genre != nil {
			g := *m.Genre
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
		}
		if m.Watched {
			watched++
		}
	}

	st := Stats{NumberWatched: watched, TotalMovies: len(movies)}
	if rated > 0 {
		avg := Round2(sum / float64(rated))
		st.AverageRating = &avg
	}
	if len(order) > 0 {
		best := order[0]
		for _, g := range order[1:] {
			if counts[g] > counts[best] {
				best = g
			}
		}
		st.MostFrequentGenre = &best
	}
	return st
}

// Round2 rounds x to two decimals, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// GenreStat is the number of movies in a genre and their mean rating.
type GenreStat struct {
	Genre         string   `json:"genre"`
	Count         int      `json:"count"`
	AverageRating *float64 `json:"average_rating"`
}

// GenreBreakdown groups movies by genre, most common first. Genres with the
// same count keep the order in which they first appear. Movies without a
// genre are skipped.
func GenreBreakdown(movies []*model.Movie) []GenreStat {
	type acc struct {
		count int
		sum   float64
		rated int
		first int
	}
	groups := map[string]*acc{}
	for i, m := range movies {
		if m.Genre == nil {
			continue
		}
		a, ok := groups[*m.Genre]
		if !ok {
			a = &acc{first: i}
			groups[*m.Genre] = a
		}
		a.count++
		if m.Rating != nil {
			a.sum += *m.Rating
			a.rated++
		}
	}

	out := make([]GenreStat, 0, len(groups))
	for g, a := range groups {
		gs := GenreStat{Genre: g, Count: a.count}
		if a.rated > 0 {
			avg := Round2(a.sum / float64(a.rated))
			gs.AverageRating = &avg
		}
		out = append(out, gs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return groups[out[i].Genre].first < groups[out[j].Genre].first
	})
	return out
}

// TopRated returns up to n rated movies, best first, keeping only the best
// entry per title. Equal ratings keep their input order.
func TopRated(movies []*model.Movie, n int) []*model.Movie {
	rated := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Rating != nil {
			rated = append(rated, m)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rating > *rated[j].Rating
	})

	out := []*model.Movie{}
	seen := map[string]bool{}
	for _, m := range rated {
		if len(out) >= n {
			break
		}
		if seen[m.Title] {
			continue
		}
		seen[m.Title] = true
		out = append(out, m)
	}
	return out
}

// CountAbove returns how many movies are rated strictly above threshold.
func CountAbove(movies []*model.Movie, threshold float64) int {
	n := 0
	for _, m := range movies {
		if m.Rating != nil && *m.Rating > threshold {
			n++
		}
	}
	return n
}
