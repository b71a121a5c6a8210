// Package services provides external service integrations.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ytsbrowser/models"
)

const (
	// DefaultYTSBaseURL is the public YTS API endpoint.
	DefaultYTSBaseURL = "https://yts.mx/api/v2"

	// ytsTimeout bounds every request, including reading the body.
	ytsTimeout = 10 * time.Second

	listMoviesPath       = "/list_movies.json"
	movieDetailsPath     = "/movie_details.json"
	movieSuggestionsPath = "/movie_suggestions.json"
)

// ErrRequestFailed matches every error returned by the YTS service.
var ErrRequestFailed = errors.New("yts request failed")

// RequestError describes a failed YTS call: a transport error, a timeout,
// a non-2xx status or a body that is not JSON.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// QueryParams are the optional filters accepted by the listing endpoint
// (limit, page, quality, sort_by, order_by, query_term, genre, ...).
type QueryParams map[string]string

// Merge returns a new map holding p overlaid with over. Keys in over win.
func (p QueryParams) Merge(over QueryParams) QueryParams {
	merged := make(QueryParams, len(p)+len(over))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

func (p QueryParams) values() url.Values {
	values := url.Values{}
	for k, v := range p {
		values.Set(k, v)
	}
	return values
}

// DefaultListParams returns the filters used when listing movies.
func DefaultListParams() QueryParams {
	return QueryParams{
		"limit":    "20",
		"page":     "1",
		"quality":  "1080p",
		"sort_by":  "download_count",
		"order_by": "desc",
	}
}

// MovieCatalog is the read-only view of the YTS API used by the UIs.
type MovieCatalog interface {
	ListMovies(ctx context.Context, params QueryParams) (*ListMoviesResponse, error)
	GetMovieDetails(ctx context.Context, movieID string) (*MovieDetailsResponse, error)
	GetMovieSuggestions(ctx context.Context, movieID string) (*MovieSuggestionsResponse, error)
	SearchMovies(ctx context.Context, query string, params QueryParams) (*ListMoviesResponse, error)
}

var _ MovieCatalog = (*YTSService)(nil)

// Envelope is the wrapper YTS puts around every payload.
type Envelope struct {
	Status        string          `json:"status"`
	StatusMessage string          `json:"status_message"`
	Meta          json.RawMessage `json:"@meta,omitempty"`
}

// ListMoviesResponse is the body of /list_movies.json.
type ListMoviesResponse struct {
	Envelope
	Data MovieList `json:"data"`
}

// MovieList is one page of listing results.
type MovieList struct {
	MovieCount int               `json:"movie_count"`
	Limit      int               `json:"limit"`
	PageNumber int               `json:"page_number"`
	Movies     []models.RawMovie `json:"movies"`
}

// MovieDetailsResponse is the body of /movie_details.json.
type MovieDetailsResponse struct {
	Envelope
	Data struct {
		Movie models.RawMovie `json:"movie"`
	} `json:"data"`
}

// MovieSuggestionsResponse is the body of /movie_suggestions.json.
type MovieSuggestionsResponse struct {
	Envelope
	Data struct {
		MovieCount int               `json:"movie_count"`
		Movies     []models.RawMovie `json:"movies"`
	} `json:"data"`
}

// YTSService handles interactions with the YTS movie API
type YTSService struct {
	baseURL string
	client  *http.Client
}

// NewYTSService creates a YTS service bound to the public endpoint
func NewYTSService() *YTSService {
	return NewYTSServiceWithBaseURL(DefaultYTSBaseURL)
}

// NewYTSServiceWithBaseURL creates a YTS service bound to baseURL
func NewYTSServiceWithBaseURL(baseURL string) *YTSService {
	return &YTSService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: ytsTimeout,
		},
	}
}

// ListMovies lists movies using the default filters overlaid with params.
func (y *YTSService) ListMovies(ctx context.Context, params QueryParams) (*ListMoviesResponse, error) {
	var resp ListMoviesResponse
	if err := y.get(ctx, "list movies", listMoviesPath, DefaultListParams().Merge(params), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMovieDetails fetches one movie with its images and cast.
func (y *YTSService) GetMovieDetails(ctx context.Context, movieID string) (*MovieDetailsResponse, error) {
	params := QueryParams{
		"movie_id":    movieID,
		"with_images": "true",
		"with_cast":   "true",
	}

	var resp MovieDetailsResponse
	if err := y.get(ctx, "get movie details", movieDetailsPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMovieSuggestions fetches movies related to movieID.
func (y *YTSService) GetMovieSuggestions(ctx context.Context, movieID string) (*MovieSuggestionsResponse, error) {
	var resp MovieSuggestionsResponse
	if err := y.get(ctx, "get movie suggestions", movieSuggestionsPath, QueryParams{"movie_id": movieID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchMovies lists movies matching query. A query_term in params is ignored.
func (y *YTSService) SearchMovies(ctx context.Context, query string, params QueryParams) (*ListMoviesResponse, error) {
	merged := params.Merge(QueryParams{"query_term": query})

	var resp ListMoviesResponse
	if err := y.get(ctx, "search movies", listMoviesPath, merged, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (y *YTSService) get(ctx context.Context, op, path string, params QueryParams, out interface{}) error {
	reqURL := y.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.values().Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &RequestError{Op: op, URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return &RequestError{Op: op, URL: reqURL, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{
			Op:         op,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, URL: reqURL, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
