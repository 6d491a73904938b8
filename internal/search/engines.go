// Package search runs multi-engine web research for a prospect company,
// cascading across engines, grading result quality, and filling gaps with
// follow-up query batches.
package search

import (
	"context"
	"errors"

	"github.com/evoke-group/presales-cli/internal/model"
	"github.com/evoke-group/presales-cli/internal/resilience"
	"github.com/evoke-group/presales-cli/pkg/duckduckgo"
	"github.com/evoke-group/presales-cli/pkg/googleweb"
	"github.com/evoke-group/presales-cli/pkg/serpapi"
)

// Engine is a single search backend in the cascade.
type Engine interface {
	Name() string
	// Available reports whether the engine can serve requests (keyed
	// engines without a key are skipped).
	Available() bool
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// ddgEngine adapts the DuckDuckGo client. Rate limits are retried with a
// longer penalty wait since the endpoint throttles aggressively.
type ddgEngine struct {
	client duckduckgo.Client
	retry  resilience.RetryConfig
}

// NewDuckDuckGoEngine wraps a DuckDuckGo client with retry handling.
func NewDuckDuckGoEngine(client duckduckgo.Client, retry resilience.RetryConfig) Engine {
	retry.OnRetry = resilience.RetryLogger("duckduckgo", "search")
	return &ddgEngine{client: client, retry: retry}
}

func (e *ddgEngine) Name() string    { return "duckduckgo" }
func (e *ddgEngine) Available() bool { return true }

func (e *ddgEngine) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	hits, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) ([]duckduckgo.Result, error) {
		hits, err := e.client.Search(ctx, query, maxResults)
		if errors.Is(err, duckduckgo.ErrRateLimited) {
			return nil, resilience.NewRateLimitError(err)
		}
		return hits, err
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, model.SearchResult{
			Source:  e.Name(),
			Query:   query,
			Title:   h.Title,
			Snippet: h.Snippet,
			URL:     h.URL,
		})
	}
	return results, nil
}

// googleEngine adapts the keyless Google scraper.
type googleEngine struct {
	client googleweb.Client
	retry  resilience.RetryConfig
}

// NewGoogleEngine wraps a Google web-scrape client with retry handling.
func NewGoogleEngine(client googleweb.Client, retry resilience.RetryConfig) Engine {
	retry.OnRetry = resilience.RetryLogger("googleweb", "search")
	return &googleEngine{client: client, retry: retry}
}

func (e *googleEngine) Name() string    { return "google" }
func (e *googleEngine) Available() bool { return true }

func (e *googleEngine) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	hits, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) ([]googleweb.Result, error) {
		hits, err := e.client.Search(ctx, query, maxResults)
		if errors.Is(err, googleweb.ErrRateLimited) {
			return nil, resilience.NewRateLimitError(err)
		}
		return hits, err
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, model.SearchResult{
			Source: e.Name(),
			Query:  query,
			Title:  h.Title,
			URL:    h.URL,
		})
	}
	return results, nil
}

// serpEngine adapts the keyed SerpAPI client. It is the paid fallback, so
// it sits last in the cascade.
type serpEngine struct {
	client serpapi.Client
	keyed  bool
	retry  resilience.RetryConfig
}

// NewSerpAPIEngine wraps a SerpAPI client. keyed should be false when no
// API key is configured; the engine then reports itself unavailable.
func NewSerpAPIEngine(client serpapi.Client, keyed bool, retry resilience.RetryConfig) Engine {
	retry.OnRetry = resilience.RetryLogger("serpapi", "search")
	return &serpEngine{client: client, keyed: keyed, retry: retry}
}

func (e *serpEngine) Name() string    { return "serpapi" }
func (e *serpEngine) Available() bool { return e.keyed }

func (e *serpEngine) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*serpapi.SearchResponse, error) {
		resp, err := e.client.Search(ctx, query, maxResults)
		if errors.Is(err, serpapi.ErrRateLimited) {
			return nil, resilience.NewRateLimitError(err)
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.OrganicResults))
	for _, h := range resp.OrganicResults {
		results = append(results, model.SearchResult{
			Source:  e.Name(),
			Query:   query,
			Title:   h.Title,
			Snippet: h.Snippet,
			URL:     h.Link,
		})
	}
	return results, nil
}
