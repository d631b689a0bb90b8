// Package omdb is a small client for the OMDb API (https://www.omdbapi.com).
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "https://www.omdbapi.com/"
	// DefaultTimeout bounds a single OMDb request.
	DefaultTimeout = 10 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to OMDb over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// SearchResult is one entry of an OMDb title search.
type SearchResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

// StatusError is returned when OMDb answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("omdb: unexpected status %d: %s", e.StatusCode, e.Body)
}

// NewClient builds a Client. Zero values in cfg fall back to the defaults.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Search looks titles up by name. An empty slice is returned when OMDb
// reports no match.
func (c *Client) Search(ctx context.Context, title string, page int) ([]SearchResult, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("s", title)
	q.Set("page", strconv.Itoa(page))

	var body struct {
		Response string         `json:"Response"`
		Error    string         `json:"Error"`
		Search   []SearchResult `json:"Search"`
	}
	if err := c.get(ctx, q, &body); err != nil {
		c.logger.WithError(err).WithField("title", title).Error("omdb search failed")
		return nil, err
	}
	if strings.EqualFold(body.Response, "False") {
		c.logger.WithFields(logrus.Fields{"title": title, "omdb_error": body.Error}).Warn("omdb search returned no results")
		return []SearchResult{}, nil
	}
	if body.Search == nil {
		body.Search = []SearchResult{}
	}
	c.logger.WithFields(logrus.Fields{"title": title, "results": len(body.Search)}).Debug("omdb search")
	return body.Search, nil
}

// FetchByID returns the full OMDb detail payload for an IMDb id. found is
// false when OMDb does not know the id.
func (c *Client) FetchByID(ctx context.Context, imdbID string) (data map[string]any, found bool, err error) {
	q := url.Values{}
	q.Set("i", imdbID)
	q.Set("plot", "full")

	if err := c.get(ctx, q, &data); err != nil {
		c.logger.WithError(err).WithField("imdb_id", imdbID).Error("omdb fetch failed")
		return nil, false, err
	}
	if resp, _ := data["Response"].(string); strings.EqualFold(resp, "False") {
		c.logger.WithFields(logrus.Fields{"imdb_id": imdbID, "omdb_error": data["Error"]}).Warn("movie not found in omdb")
		return nil, false, nil
	}
	c.logger.WithField("imdb_id", imdbID).Debug("fetched movie details")
	return data, true, nil
}

func (c *Client) get(ctx context.Context, q url.Values, out any) error {
	q.Set("apikey", c.apiKey)
	reqURL := c.baseURL
	if strings.Contains(reqURL, "?") {
		reqURL += "&" + q.Encode()
	} else {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("omdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("omdb: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("omdb: decode response: %w", err)
	}
	return nil
}
