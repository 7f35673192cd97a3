package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

var (
	// ErrUnavailable indicates the catalog provider could not be reached or
	// returned an unusable response.
	ErrUnavailable = errors.New("movie catalog unavailable")

	// ErrNotFound indicates the search returned no candidates for the query.
	ErrNotFound = errors.New("no matching movie in catalog")
)

// Movie is a single search candidate from the catalog provider. Only the
// fields this application copies into a saved entry are decoded.
type Movie struct {
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Client queries the TMDB search API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a catalog client. An empty baseURL selects the public
// TMDB endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResponse struct {
	Results []Movie `json:"results"`
}

// Search queries the provider for the given title. An empty result slice is
// a valid outcome; only transport and decode failures are errors.
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	reqURL := c.baseURL + "/search/movie?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return sr.Results, nil
}

// Resolve normalizes the query, searches, and selects the best candidate:
// an exact post-normalization title match if one exists, otherwise the first
// result in provider order. Returns ErrNotFound when the search is empty.
func (c *Client) Resolve(ctx context.Context, query string) (*Movie, error) {
	normalized := NormalizeTitle(query)
	if normalized == "" {
		return nil, ErrNotFound
	}

	results, err := c.Search(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	for i := range results {
		if results[i].Title == normalized {
			return &results[i], nil
		}
	}
	return &results[0], nil
}

// NormalizeTitle trims the input and title-cases each whitespace-separated
// token. The provider's fuzzy search is sensitive to the casing of
// multi-word titles, and the form accepts free text.
func NormalizeTitle(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		runes := []rune(strings.ToLower(f))
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}
