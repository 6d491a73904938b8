// Package serpapi provides a client for the SerpAPI Google search endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://serpapi.com"

// ErrRateLimited is returned when the daily quota is exceeded (HTTP 429).
var ErrRateLimited = errors.New("serpapi: rate limited")

// ErrUnauthorized is returned on authentication failures (HTTP 401/403).
var ErrUnauthorized = errors.New("serpapi: unauthorized")

// Client performs SerpAPI search operations.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) (*SearchResponse, error)
}

// SearchResponse is the subset of the SerpAPI payload the cascade consumes.
type SearchResponse struct {
	Error          string          `json:"error,omitempty"`
	OrganicResults []OrganicResult `json:"organic_results"`
}

// OrganicResult is a single organic search hit.
type OrganicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, maxResults int) (*SearchResponse, error) {
	if maxResults > 10 {
		maxResults = 10 // SerpAPI caps organic results per page
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("gl", "us")
	params.Set("hl", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusOK:
	default:
		return nil, eris.Errorf("serpapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serpapi: unmarshal response")
	}

	if result.Error != "" {
		return nil, eris.Errorf("serpapi: api error: %s", result.Error)
	}

	return &result, nil
}
