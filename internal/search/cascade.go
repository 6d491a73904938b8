package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/evoke-group/presales-cli/internal/model"
)

// CascadeConfig tunes the engine cascade.
type CascadeConfig struct {
	// TargetPerQuery is how many results each query aims to collect.
	TargetPerQuery int
	// StopFraction stops trying further engines for a query once this
	// fraction of the target has been collected.
	StopFraction float64
	// EngineDelay paces consecutive engine calls within one query.
	EngineDelay time.Duration
	// QueryDelay paces consecutive queries.
	QueryDelay time.Duration
}

// Cascade runs queries across engines in priority order, deduplicating by
// URL across the whole run.
type Cascade struct {
	engines []Engine
	cfg     CascadeConfig

	engineLimiter *rate.Limiter
	queryLimiter  *rate.Limiter
}

// NewCascade creates a cascade over the given engines. Engine order is
// priority order: free engines first, paid fallbacks last.
func NewCascade(engines []Engine, cfg CascadeConfig) *Cascade {
	if cfg.TargetPerQuery <= 0 {
		cfg.TargetPerQuery = 8
	}
	if cfg.StopFraction <= 0 || cfg.StopFraction > 1 {
		cfg.StopFraction = 0.7
	}
	c := &Cascade{engines: engines, cfg: cfg}
	c.engineLimiter = newLimiter(cfg.EngineDelay)
	c.queryLimiter = newLimiter(cfg.QueryDelay)
	return c
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Run executes all queries and returns the deduplicated, categorized
// results. Engine failures are logged and skipped; a query that yields
// nothing from every engine contributes nothing.
func (c *Cascade) Run(ctx context.Context, queries []string) ([]model.SearchResult, error) {
	seen := map[string]bool{}
	var all []model.SearchResult

	for _, query := range queries {
		if err := c.queryLimiter.Wait(ctx); err != nil {
			return all, err
		}

		collected, err := c.runQuery(ctx, query, seen)
		if err != nil {
			return all, err
		}
		all = append(all, collected...)
	}

	return all, nil
}

// runQuery cascades one query through the engines, stopping early once
// enough of the target has been collected.
func (c *Cascade) runQuery(ctx context.Context, query string, seen map[string]bool) ([]model.SearchResult, error) {
	stopAt := int(float64(c.cfg.TargetPerQuery) * c.cfg.StopFraction)
	if stopAt < 1 {
		stopAt = 1
	}

	var collected []model.SearchResult
	for i, engine := range c.engines {
		if !engine.Available() {
			continue
		}
		if i > 0 {
			if err := c.engineLimiter.Wait(ctx); err != nil {
				return collected, err
			}
		}

		hits, err := engine.Search(ctx, query, c.cfg.TargetPerQuery)
		if err != nil {
			if ctx.Err() != nil {
				return collected, ctx.Err()
			}
			zap.L().Warn("search engine failed, cascading",
				zap.String("engine", engine.Name()),
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}

		for _, hit := range hits {
			if hit.URL == "" || seen[hit.URL] {
				continue
			}
			seen[hit.URL] = true
			hit.Category = Categorize(hit.URL, hit.Title)
			collected = append(collected, hit)
		}

		if len(collected) >= stopAt {
			zap.L().Debug("query target reached, skipping remaining engines",
				zap.String("query", query),
				zap.String("engine", engine.Name()),
				zap.Int("collected", len(collected)),
			)
			break
		}
	}

	return collected, nil
}
