// Command analyze prints summary statistics for an offline IMDb CSV
// catalogue: average rating, top genres, the best rated titles, how many
// titles beat a rating threshold and the mean rating per genre.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/iliyamo/movie-watchlist/internal/analytics"
	"github.com/iliyamo/movie-watchlist/internal/catalog"
	"github.com/iliyamo/movie-watchlist/internal/logging"
)

func main() {
	var (
		input     = pflag.StringP("input", "i", "IMBD.csv", "CSV catalogue to analyze")
		output    = pflag.StringP("output", "o", "console", "Output format: console, json")
		threshold = pflag.Float64("threshold", 8.0, "Count titles rated strictly above this value")
		top       = pflag.Int("top", 10, "Number of best rated titles to list")
		genres    = pflag.Int("genres", 5, "Number of genres to list by count")
		verbose   = pflag.BoolP("verbose", "v", false, "Enable debug logging")
	)
	pflag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.New("dev", level)

	f, err := os.Open(*input)
	if err != nil {
		logger.WithError(err).Fatal("open catalogue")
	}
	defer f.Close()

	movies, err := catalog.LoadCSV(f)
	if err != nil {
		logger.WithError(err).WithField("input", *input).Fatal("parse catalogue")
	}
	logger.WithFields(logrus.Fields{"input": *input, "rows": len(movies)}).Debug("catalogue loaded")

	report := analytics.BuildReport(movies, *threshold, *top, *genres)
	if *output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.WithError(err).Fatal("encode report")
		}
		return
	}
	printReport(os.Stdout, report)
}

func printReport(w io.Writer, r analytics.Report) {
	fmt.Fprintf(w, "Total movies: %d\n", r.TotalMovies)
	fmt.Fprintf(w, "Average rating: %s\n", optFloat(r.AverageRating))
	if r.MostFrequentGenre != nil {
		fmt.Fprintf(w, "Most frequent genre: %s\n", *r.MostFrequentGenre)
	}
	fmt.Fprintf(w, "Movies with rating > %.1f: %d\n", r.Threshold, r.AboveThreshold)

	fmt.Fprintf(w, "\nTop %d movies by rating:\n", len(r.TopRated))
	for i, m := range r.TopRated {
		fmt.Fprintf(w, "%3d. %-50s %.1f\n", i+1, m.Title, *m.Rating)
	}

	fmt.Fprintf(w, "\nTop %d genres by count:\n", len(r.TopGenres))
	for _, g := range r.TopGenres {
		fmt.Fprintf(w, "  %-40s %d\n", g.Genre, g.Count)
	}

	fmt.Fprintln(w, "\nAverage rating per genre:")
	for _, g := range r.GenreAverages {
		fmt.Fprintf(w, "  %-40s %s\n", g.Genre, optFloat(g.AverageRating))
	}
}

func optFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
